// Package runtime provides the execution context for guw commands.
//
// It encapsulates shared dependencies needed by actions, such as the logger,
// the config file path and the way a working copy is opened.
package runtime
