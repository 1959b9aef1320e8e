// Package config holds the declarative description of a fork: its remotes,
// the source, target and optional upstream branches, and the ordered chain of
// features with their review status.
//
// It handles:
//   - Decoding and encoding the TOML config file
//   - Structural validation of the feature chain
//   - Adding, removing and updating features
package config
