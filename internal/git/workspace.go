package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/engine"
	guwerrors "guw.dev/guw/internal/errors"
)

// WorkspaceOptions select where a command runs
type WorkspaceOptions struct {
	// Dir is an existing working copy or the directory to clone into.
	// Empty means a temporary clone.
	Dir string
	// Keep leaves a temporary clone on disk after Close
	Keep bool
}

// Workspace is a prepared working copy with every configured remote
type Workspace struct {
	dir     string
	temp    bool
	keep    bool
	backend *Backend
}

var _ engine.Workspace = (*Workspace)(nil)

// PrepareWorkspace opens or clones the working copy and makes sure every
// remote of the config exists with the configured URL. It does not fetch.
func PrepareWorkspace(ctx context.Context, cfg *config.Config, opts WorkspaceOptions) (*Workspace, error) {
	ws := &Workspace{dir: opts.Dir, keep: opts.Keep}

	if ws.dir == "" {
		dir, err := os.MkdirTemp("", "guw-")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary directory: %w", err)
		}
		ws.dir, ws.temp = dir, true
	}

	if !isRepository(ws.dir) {
		source, ok := cfg.Remote(cfg.Source.Remote)
		if !ok {
			_ = ws.Close()
			return nil, guwerrors.NewValidationError("source", "unknown remote %q", cfg.Source.Remote)
		}
		if err := Clone(ctx, source.URL, source.Name, ws.dir); err != nil {
			_ = ws.Close()
			return nil, guwerrors.NewBackendError("clone "+source.URL, err)
		}
	}

	backend, err := NewBackend(ws.dir)
	if err != nil {
		_ = ws.Close()
		return nil, guwerrors.NewBackendError("open "+ws.dir, err)
	}
	ws.backend = backend

	for _, r := range cfg.Remotes {
		if err := backend.repo.EnsureRemote(r.Name, r.URL); err != nil {
			_ = ws.Close()
			return nil, err
		}
	}
	return ws, nil
}

func isRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Backend returns the backend bound to the working copy
func (w *Workspace) Backend() engine.Backend {
	return w.backend
}

// Dir returns the working copy directory
func (w *Workspace) Dir() string {
	return w.dir
}

// Temporary reports whether the working copy is a temporary clone
func (w *Workspace) Temporary() bool {
	return w.temp
}

// Keep leaves a temporary clone on disk after Close
func (w *Workspace) Keep() {
	w.keep = true
}

// Close removes a temporary clone unless it was asked to be kept
func (w *Workspace) Close() error {
	if !w.temp || w.keep {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", w.dir, err)
	}
	return nil
}
