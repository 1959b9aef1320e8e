package actions

import (
	"fmt"

	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/internal/tui"
)

// RemoveOptions contains options for the remove command
type RemoveOptions struct {
	RunFlags
	Name string
	// Force allows removing a feature under review
	Force bool
}

// RemoveAction drops a feature from the chain and rebuilds its dependents without it
func RemoveAction(ctx *runtime.Context, opts RemoveOptions) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	force := opts.Force
	if _, f := cfg.Find(opts.Name); f != nil && f.Status == status.Merging && !force && ctx.Interactive {
		force, err = tui.Confirm(fmt.Sprintf("%s is under review. Remove it anyway?", opts.Name), false)
		if err != nil {
			return err
		}
	}

	next := cfg.Clone()
	removed, err := next.Remove(opts.Name, force)
	if err != nil {
		return err
	}

	ctx.Splog.Info("Removing %s (%s)", tui.ColorBranchName(removed.Name), tui.ColorStatus(removed.Status))
	if err := commit(ctx, cfg, next, plan.Options{}, opts.RunFlags); err != nil {
		return err
	}
	if !opts.DryRun {
		ctx.Splog.Tip("The %s branch itself was left untouched on %s.", removed.ActiveBranch(), removed.Remote)
	}
	return nil
}
