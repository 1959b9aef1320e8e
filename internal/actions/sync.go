package actions

import (
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/tui"
)

// SyncOptions contains options for the sync command
type SyncOptions struct {
	RunFlags
}

// SyncAction rebuilds the whole chain on upstream (or source when the config
// has no upstream) and moves source and target along
func SyncAction(ctx *runtime.Context, opts SyncOptions) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	base := cfg.UpstreamOrSource()
	if !opts.DryRun {
		ctx.Splog.Info("Syncing %d feature(s) onto %s", len(cfg.Features), tui.ColorBranchName(base.Ref()))
	}
	_, err = execute(ctx, cfg, plan.ModeSync, plan.Options{}, opts.RunFlags)
	return err
}
