// Package git drives a guw working copy.
//
// It wraps git command execution and go-git for:
//   - Preparing the working copy (clone, remotes)
//   - Ref queries and updates (branches, remote-tracking refs, ancestry)
//   - Rebasing with conflict detection
//   - Remote operations (fetch, force-with-lease push)
//
// Backend implements engine.Backend on top of these helpers.
package git
