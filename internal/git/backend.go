package git

import (
	"context"
	"time"

	"guw.dev/guw/internal/engine"
)

// Backend implements engine.Backend for a working copy on disk
type Backend struct {
	runner *CommandRunner
	repo   *Repository
	now    func() time.Time
}

var _ engine.Backend = (*Backend)(nil)

// NewBackend opens the working copy at dir
func NewBackend(dir string) (*Backend, error) {
	repo, err := OpenRepository(dir)
	if err != nil {
		return nil, err
	}
	return &Backend{
		runner: NewCommandRunner(repo.Root()),
		repo:   repo,
		now:    time.Now,
	}, nil
}

// Repository exposes the go-git view of the working copy
func (b *Backend) Repository() *Repository {
	return b.repo
}

// Runner exposes the command runner bound to the working copy
func (b *Backend) Runner() *CommandRunner {
	return b.runner
}

func (b *Backend) BranchExists(name string) (bool, error) {
	return b.repo.BranchExists(name)
}

func (b *Backend) Revision(ref string) (string, error) {
	return b.repo.Revision(ref)
}

func (b *Backend) IsAncestor(ancestor, descendant string) (bool, error) {
	return b.repo.IsAncestor(ancestor, descendant)
}

func (b *Backend) CurrentBranch() (string, error) {
	return b.repo.CurrentBranch()
}

func (b *Backend) CurrentHead() (string, error) {
	return b.repo.Head()
}

// gitDir returns the absolute .git directory of the working copy
func (b *Backend) gitDir(ctx context.Context) (string, error) {
	return b.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
}
