package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	guwerrors "guw.dev/guw/internal/errors"
)

const (
	// DefaultMaxSnapshots is the number of snapshot files kept on disk
	DefaultMaxSnapshots = 10
	jsonExt             = ".json"
)

// Snapshot is the state of every branch a plan touches, taken before the run
type Snapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	Mode          string    `json:"mode"`
	CurrentBranch string    `json:"current_branch"`
	Head          string    `json:"head"`
	// Branches lists the snapshotted branches in plan order
	Branches []string `json:"branches"`
	// BranchSHAs maps branch name to its tip; branches missing from the map did not exist
	BranchSHAs map[string]string `json:"branch_shas"`
}

// TakeSnapshot records the current branch, HEAD and the tip of each branch
func TakeSnapshot(backend Backend, mode string, branches []string) (*Snapshot, error) {
	current, err := backend.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}
	head, err := backend.CurrentHead()
	if err != nil && !errors.Is(err, guwerrors.ErrBranchNotFound) {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	snap := &Snapshot{
		Timestamp:     time.Now(),
		Mode:          mode,
		CurrentBranch: current,
		Head:          head,
		Branches:      append([]string(nil), branches...),
		BranchSHAs:    make(map[string]string, len(branches)),
	}
	for _, name := range branches {
		exists, err := backend.BranchExists(name)
		if err != nil {
			return nil, fmt.Errorf("failed to check branch %s: %w", name, err)
		}
		if !exists {
			continue
		}
		sha, err := backend.Revision(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve branch %s: %w", name, err)
		}
		snap.BranchSHAs[name] = sha
	}
	return snap, nil
}

// Restore puts every snapshotted branch back at its recorded tip, deletes the
// ones that did not exist and returns to the recorded HEAD. It keeps going
// after individual failures and reports all of them.
func (s *Snapshot) Restore(ctx context.Context, backend Backend) error {
	var errs []error

	if backend.IsRebaseInProgress(ctx) {
		if err := backend.AbortRebase(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to abort rebase: %w", err))
		}
	}

	// step off every branch so each one can be moved or deleted
	if s.Head != "" {
		if err := backend.Detach(ctx, s.Head); err != nil {
			errs = append(errs, fmt.Errorf("failed to detach HEAD: %w", err))
		}
	}

	for _, name := range s.Branches {
		if sha, ok := s.BranchSHAs[name]; ok {
			if err := backend.CreateOrMoveBranch(name, sha); err != nil {
				errs = append(errs, fmt.Errorf("failed to restore branch %s: %w", name, err))
			}
			continue
		}
		exists, err := backend.BranchExists(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if exists {
			if err := backend.DeleteBranch(name); err != nil {
				errs = append(errs, fmt.Errorf("failed to delete branch %s: %w", name, err))
			}
		}
	}

	if s.CurrentBranch != "" {
		if err := backend.Checkout(ctx, s.CurrentBranch); err != nil {
			errs = append(errs, fmt.Errorf("failed to check out %s: %w", s.CurrentBranch, err))
		}
	}

	return errors.Join(errs...)
}

// snapshotFilename sorts chronologically: YYYYMMDDHHMMSS.000_mode.json
func snapshotFilename(s *Snapshot) string {
	return fmt.Sprintf("%s_%s%s", s.Timestamp.Format("20060102150405.000"), s.Mode, jsonExt)
}

// Save writes the snapshot under dir and prunes the oldest files beyond max
func (s *Snapshot) Save(dir string, max int) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, snapshotFilename(s))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	_ = pruneSnapshots(dir, max)
	return path, nil
}

// LoadSnapshot reads a snapshot file written by Save
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

func pruneSnapshots(dir string, max int) error {
	if max <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == jsonExt {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= max {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-max] {
		_ = os.Remove(filepath.Join(dir, name))
	}
	return nil
}
