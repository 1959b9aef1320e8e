// Package cli defines the cobra command tree of guw. Commands parse flags and
// hand off to the actions package.
package cli
