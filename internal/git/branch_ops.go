package git

import (
	"context"
	"fmt"
)

// BackupDateFormat suffixes backup branches
const BackupDateFormat = "2006-01-02"

// Checkout checks out an existing local branch
func (b *Backend) Checkout(ctx context.Context, name string) error {
	_, err := b.runner.Run(ctx, "checkout", "--quiet", name)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}

// Detach checks out a revision in detached HEAD state
func (b *Backend) Detach(ctx context.Context, commit string) error {
	_, err := b.runner.Run(ctx, "checkout", "--quiet", "--detach", commit)
	if err != nil {
		return fmt.Errorf("failed to checkout %s in detached state: %w", commit, err)
	}
	return nil
}

// CreateOrMoveBranch points a branch at a commit. The checked out branch cannot be moved.
func (b *Backend) CreateOrMoveBranch(name, commit string) error {
	current, err := b.repo.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return fmt.Errorf("cannot move checked out branch %s", name)
	}
	return b.repo.SetBranch(name, commit)
}

// DeleteBranch deletes a local branch
func (b *Backend) DeleteBranch(name string) error {
	current, err := b.repo.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return fmt.Errorf("cannot delete checked out branch %s", name)
	}
	return b.repo.RemoveBranch(name)
}

// BackupBranch copies a branch to <name>-<date>, adding the time of day when
// that name is already taken
func (b *Backend) BackupBranch(name string) (string, error) {
	sha, err := b.repo.Revision(name)
	if err != nil {
		return "", err
	}

	now := b.now()
	backup := fmt.Sprintf("%s-%s", name, now.Format(BackupDateFormat))
	exists, err := b.repo.BranchExists(backup)
	if err != nil {
		return "", err
	}
	if exists {
		backup = fmt.Sprintf("%s-%s", name, now.Format(BackupDateFormat+"-150405"))
	}

	if err := b.repo.SetBranch(backup, sha); err != nil {
		return "", err
	}
	return backup, nil
}
