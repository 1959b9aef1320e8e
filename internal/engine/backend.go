package engine

import (
	"context"
)

// Backend is the narrow set of repository operations the engine needs.
// Implementations own a single working copy; they are not safe for
// concurrent use except for Fetch.
type Backend interface {
	// Fetch updates the remote-tracking refs of a remote
	Fetch(ctx context.Context, remote string) error
	// BranchExists reports whether a local branch exists
	BranchExists(name string) (bool, error)
	// Revision resolves a local branch, remote-tracking ref or commit to a commit id.
	// Missing refs return an error matching errors.ErrBranchNotFound.
	Revision(ref string) (string, error)
	// IsAncestor reports whether ancestor is reachable from descendant; a commit is its own ancestor
	IsAncestor(ancestor, descendant string) (bool, error)
	// Checkout checks out a local branch
	Checkout(ctx context.Context, name string) error
	// Detach checks out a commit with a detached HEAD
	Detach(ctx context.Context, commit string) error
	// CurrentBranch returns the checked out branch, or "" when HEAD is detached
	CurrentBranch() (string, error)
	// CurrentHead returns the commit HEAD points at
	CurrentHead() (string, error)
	// Rebase replays from..branch onto onto and moves branch to the result.
	// Conflicts return an *errors.ConflictError and leave the rebase in progress.
	Rebase(ctx context.Context, branch, onto, from string) (string, error)
	// IsRebaseInProgress reports whether a stopped rebase is waiting
	IsRebaseInProgress(ctx context.Context) bool
	// AbortRebase cancels a stopped rebase
	AbortRebase(ctx context.Context) error
	// CreateOrMoveBranch points a local branch at a commit, creating it if needed
	CreateOrMoveBranch(name, commit string) error
	// DeleteBranch removes a local branch
	DeleteBranch(name string) error
	// Push force-pushes a local branch to a remote, guarded by the remote-tracking ref
	Push(ctx context.Context, remote, branch string) error
	// BackupBranch copies the current tip of a local branch to a new
	// timestamp-suffixed branch and returns its name
	BackupBranch(name string) (string, error)
}

// Workspace is a prepared working copy with its backend
type Workspace interface {
	Backend() Backend
	Dir() string
	// Keep leaves the working copy on disk when it is closed
	Keep()
	Close() error
}
