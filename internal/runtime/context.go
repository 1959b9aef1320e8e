package runtime

import (
	"context"
	"os"
	"path/filepath"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/engine"
	"guw.dev/guw/internal/git"
	"guw.dev/guw/internal/tui"
)

// WorkspaceOpener prepares the working copy a command runs against
type WorkspaceOpener func(ctx context.Context, cfg *config.Config, opts git.WorkspaceOptions) (engine.Workspace, error)

// Context provides access to the logger and the repository for commands
type Context struct {
	Context    context.Context
	Splog      *tui.Splog
	ConfigPath string
	// Interactive enables prompts and the progress TUI
	Interactive bool
	// SnapshotDir receives pre-run ref snapshots, empty disables them
	SnapshotDir string
	// OpenWorkspace defaults to a git working copy; tests swap in a fake
	OpenWorkspace WorkspaceOpener
}

// NewContext creates a context reading the given config file
func NewContext(ctx context.Context, splog *tui.Splog, configPath string) *Context {
	if configPath == "" {
		configPath = config.DefaultPath
	}
	return &Context{
		Context:       ctx,
		Splog:         splog,
		ConfigPath:    configPath,
		Interactive:   tui.IsInteractive(),
		SnapshotDir:   DefaultSnapshotDir(),
		OpenWorkspace: OpenGitWorkspace,
	}
}

// OpenGitWorkspace prepares a real git working copy
func OpenGitWorkspace(ctx context.Context, cfg *config.Config, opts git.WorkspaceOptions) (engine.Workspace, error) {
	ws, err := git.PrepareWorkspace(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// DefaultSnapshotDir returns GUW_SNAPSHOT_DIR, or ~/.guw/snapshots
func DefaultSnapshotDir() string {
	if dir := os.Getenv("GUW_SNAPSHOT_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".guw", "snapshots")
}

// LoadConfig reads and validates the config file
func (c *Context) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg back to the config file
func (c *Context) SaveConfig(cfg *config.Config) error {
	c.Splog.Debug("Writing %s", c.ConfigPath)
	return cfg.Save(c.ConfigPath)
}
