package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	guwerrors "guw.dev/guw/internal/errors"
)

// Push force-pushes a branch, refusing to overwrite remote changes that were
// not fetched first
func (b *Backend) Push(ctx context.Context, remote, branch string) error {
	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	_, err := b.runner.RunRemote(ctx, "push", "--force-with-lease", remote, refspec)
	if err == nil {
		return nil
	}

	var cmdErr *guwerrors.GitCommandError
	if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "stale info") {
		return fmt.Errorf("%s on %s changed since it was fetched: %w", branch, remote, ErrStaleRemoteInfo)
	}
	return err
}
