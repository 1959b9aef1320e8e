// Package actions provides high-level business logic for CLI commands.
//
// Each action corresponds to a guw command (sync, add, update, remove,
// integrate, markdown) and orchestrates the config, plan and engine packages.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Splog, the config path and the workspace opener
//   - Config edits are made on a clone and saved only after the run succeeded
//   - Actions handle user interaction through the tui package
package actions
