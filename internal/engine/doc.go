// Package engine executes a plan against a git working copy.
//
// It is the core of guw, responsible for:
//   - Defining the Backend contract the working copy is driven through
//   - Snapshotting every branch a plan touches before the run
//   - Applying rebase and move steps strictly in order
//   - Rolling every local ref back to its snapshot when any step fails
//   - Pushing the rewritten branches once the whole plan succeeded
//
// The working copy is never global state: it is threaded through the
// Executor as a Backend value so runs can be exercised against a fake.
package engine
