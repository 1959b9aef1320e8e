package actions

import (
	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/internal/tui"
)

// IntegrateOptions contains options for the integrate command
type IntegrateOptions struct {
	RunFlags
	Name string
	// Sync runs a full sync afterwards to pull the integrated commits from upstream
	Sync bool
}

// IntegrateAction marks a feature as part of the source branch and rebuilds
// the chain without it
func IntegrateAction(ctx *runtime.Context, opts IntegrateOptions) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	integrated := status.Integrated
	next := cfg.Clone()
	if err := next.Update(opts.Name, config.FeatureUpdate{Status: &integrated}); err != nil {
		return err
	}

	ctx.Splog.Info("Integrating %s", tui.ColorBranchName(opts.Name))
	if err := commit(ctx, cfg, next, plan.Options{}, opts.RunFlags); err != nil {
		return err
	}

	if !opts.Sync {
		return nil
	}
	return SyncAction(ctx, SyncOptions{RunFlags: opts.RunFlags})
}
