// Package tui provides the terminal side of guw.
//
// It handles:
//   - Console and rotating file logging (Splog)
//   - Terminal styling and colors (using lipgloss)
//   - Live progress while a plan runs (using bubbletea)
//   - Confirmation prompts (using survey)
package tui
