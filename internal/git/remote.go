package git

import (
	"context"
)

// Fetch updates the remote-tracking refs of a remote, pruning deleted branches.
// Safe to call concurrently for different remotes.
func (b *Backend) Fetch(ctx context.Context, remote string) error {
	_, err := b.runner.RunRemote(ctx, "fetch", "--prune", "--no-auto-gc", "--no-write-fetch-head", remote)
	if err != nil {
		return err
	}
	return b.repo.Reopen()
}

// Clone clones url into dir, naming the remote
func Clone(ctx context.Context, url, remote, dir string) error {
	_, err := NewCommandRunner("").RunRemote(ctx, "clone", "--quiet", "--origin", remote, url, dir)
	return err
}
