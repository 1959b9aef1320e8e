package git

import (
	"context"
	"os"
	"path/filepath"

	guwerrors "guw.dev/guw/internal/errors"
)

// Rebase replays from..branch onto onto. It leaves branch checked out. On
// conflict the rebase stays in progress and a ConflictError describes it.
// Replayed commits keep their author date as committer date, so the same
// commits replayed on the same base always get the same ids.
func (b *Backend) Rebase(ctx context.Context, branch, onto, from string) (string, error) {
	_, err := b.runner.Run(ctx, "rebase", "--committer-date-is-author-date", "--onto", onto, from, branch)
	if err != nil {
		if b.IsRebaseInProgress(ctx) {
			return "", b.conflict(ctx, branch)
		}
		return "", err
	}
	return b.repo.Revision(branch)
}

func (b *Backend) conflict(ctx context.Context, branch string) error {
	commit, _ := b.repo.RebaseHead()
	files, _ := b.runner.RunLines(ctx, "diff", "--name-only", "--diff-filter=U")
	return guwerrors.NewConflictError(branch, commit, files)
}

// IsRebaseInProgress checks for the rebase-merge or rebase-apply state directories
func (b *Backend) IsRebaseInProgress(ctx context.Context) bool {
	gitDir, err := b.gitDir(ctx)
	if err != nil {
		return false
	}
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

// AbortRebase aborts an in-progress rebase
func (b *Backend) AbortRebase(ctx context.Context) error {
	_, err := b.runner.Run(ctx, "rebase", "--abort")
	return err
}
