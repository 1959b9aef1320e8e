package actions

import (
	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/internal/tui"
)

// UpdateOptions contains options for the update command. Nil fields are left untouched.
type UpdateOptions struct {
	RunFlags
	Name    string
	Status  *status.Status
	PR      *string
	Summary *string
	// From replaces the feature's content with this ref before rebasing
	From string
}

// UpdateAction edits a feature and rebuilds the chain from source
func UpdateAction(ctx *runtime.Context, opts UpdateOptions) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	next := cfg.Clone()
	update := config.FeatureUpdate{Status: opts.Status, PR: opts.PR, Summary: opts.Summary}
	if err := next.Update(opts.Name, update); err != nil {
		return err
	}

	var planOpts plan.Options
	if opts.From != "" {
		planOpts.Starts = map[string]string{opts.Name: opts.From}
		ctx.Splog.Info("Updating %s from %s", tui.ColorBranchName(opts.Name), tui.ColorBranchName(opts.From))
	}
	if opts.Status != nil {
		_, f := next.Find(opts.Name)
		ctx.Splog.Info("%s is now %s", tui.ColorBranchName(opts.Name), tui.ColorStatus(f.Status))
	}

	return commit(ctx, cfg, next, planOpts, opts.RunFlags)
}
