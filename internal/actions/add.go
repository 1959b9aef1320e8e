package actions

import (
	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/internal/tui"
)

// AddOptions contains options for the add command
type AddOptions struct {
	RunFlags
	Name string
	// After is the feature the new one depends on, or config.EndPosition
	After string
	// Remote defaults to the target's remote
	Remote  string
	PR      string
	Summary string
}

// AddAction inserts a pending feature into the chain and rebuilds every
// feature after it on top of it
func AddAction(ctx *runtime.Context, opts AddOptions) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	remote := opts.Remote
	if remote == "" {
		remote = cfg.Target.Remote
	}

	next := cfg.Clone()
	feature := config.Feature{
		Remote:  remote,
		Name:    opts.Name,
		PR:      opts.PR,
		Summary: opts.Summary,
		Status:  status.Initial,
	}
	if err := next.Add(feature, opts.After); err != nil {
		return err
	}

	if opts.After == "" || opts.After == config.EndPosition {
		ctx.Splog.Info("Adding %s at the end of the chain", tui.ColorBranchName(opts.Name))
	} else {
		ctx.Splog.Info("Adding %s after %s", tui.ColorBranchName(opts.Name), tui.ColorBranchName(opts.After))
	}
	return commit(ctx, cfg, next, plan.Options{}, opts.RunFlags)
}
