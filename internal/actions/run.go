package actions

import (
	"context"
	"errors"
	"strings"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/engine"
	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/git"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/tui"
)

// RunFlags are the options shared by every command that rebuilds the chain
type RunFlags struct {
	// Local skips every push
	Local bool
	// Backup copies rewritten branches before touching them
	Backup bool
	// Keep leaves the temporary working copy on disk
	Keep bool
	// Dir is the working copy to use instead of a temporary clone
	Dir string
	// DryRun prints the plan without touching any repository
	DryRun bool
}

func (f RunFlags) runOptions() engine.RunOptions {
	return engine.RunOptions{Backup: f.Backup, Local: f.Local}
}

func remoteNames(cfg *config.Config) []string {
	names := make([]string, len(cfg.Remotes))
	for i, r := range cfg.Remotes {
		names[i] = r.Name
	}
	return names
}

// execute prepares the working copy, fetches every remote and runs the plan for cfg
func execute(ctx *runtime.Context, cfg *config.Config, mode plan.Mode, opts plan.Options, flags RunFlags) (*engine.Report, error) {
	splog := ctx.Splog
	p := plan.Build(cfg, mode, opts)

	if flags.DryRun {
		splog.Page(p.String())
		return nil, nil
	}

	ws, err := ctx.OpenWorkspace(ctx.Context, cfg, git.WorkspaceOptions{Dir: flags.Dir, Keep: flags.Keep})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			splog.Warn("Failed to clean up %s: %v", ws.Dir(), err)
		}
	}()
	if (flags.Keep || flags.Dir != "") && ws.Dir() != "" {
		splog.Info("Working copy at %s", ws.Dir())
	}

	remotes := remoteNames(cfg)
	splog.Debug("Fetching %s", strings.Join(remotes, ", "))
	if err := engine.FetchAll(ctx.Context, ws.Backend(), remotes); err != nil {
		return nil, err
	}

	splog.Debug("%s", strings.TrimRight(p.String(), "\n"))
	report, err := runPlan(ctx, ws.Backend(), p, flags.runOptions())

	var conflict *guwerrors.ConflictError
	switch {
	case errors.As(err, &conflict):
		PrintConflictStatus(splog, conflict, p)
		return nil, err
	case err != nil && !errors.Is(err, guwerrors.ErrPush):
		return nil, err
	}

	// push failures leave a complete local chain worth reporting
	printReport(splog, report, flags.Local)
	if err != nil {
		keepForPush(splog, ws, err)
	}
	return report, err
}

// keepForPush leaves the rebuilt chain on disk so only the push has to be retried
func keepForPush(splog *tui.Splog, ws engine.Workspace, err error) {
	ws.Keep()
	if ws.Dir() == "" {
		return
	}
	splog.Warn("The rebuilt branches were kept in %s", ws.Dir())
	var pushErr *guwerrors.PushError
	if errors.As(err, &pushErr) {
		for _, f := range pushErr.Failures {
			splog.Tip("git -C %s push --force-with-lease %s %s", ws.Dir(), f.Remote, f.Branch)
		}
	}
	splog.Tip("Or rerun with --dir %s to reuse that working copy.", ws.Dir())
}

func progressTitle(mode plan.Mode) string {
	if mode == plan.ModeSync {
		return "Syncing"
	}
	return "Rebuilding"
}

// progressView renders interactive runs
var progressView = tui.RunProgressTUI

// runPlan runs p, showing a live progress view on interactive terminals
func runPlan(ctx *runtime.Context, backend engine.Backend, p *plan.Plan, opts engine.RunOptions) (*engine.Report, error) {
	splog := ctx.Splog

	if !ctx.Interactive {
		exec := engine.NewExecutor(backend, splog, tui.NewLogReporter(splog))
		exec.SnapshotDir = ctx.SnapshotDir
		return exec.Run(ctx.Context, p, opts)
	}

	descriptions := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		descriptions[i] = step.String()
	}

	// the view owns the terminal, so Ctrl-C arrives as a key press and not as a signal
	runCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	reporter := tui.NewChannelReporter(len(p.Steps))
	tuiErr := make(chan error, 1)
	splog.SetQuiet(true)
	go func() {
		err := progressView(progressTitle(p.Mode), descriptions, reporter.Updates())
		if errors.Is(err, tui.ErrInterrupted) {
			cancel()
		}
		tuiErr <- err
	}()

	exec := engine.NewExecutor(backend, splog, reporter)
	exec.SnapshotDir = ctx.SnapshotDir
	report, err := exec.Run(runCtx, p, opts)

	reporter.Close()
	if e := <-tuiErr; e != nil && !errors.Is(e, tui.ErrInterrupted) {
		splog.Debug("Progress view failed: %v", e)
	}
	splog.SetQuiet(false)
	return report, err
}

func printReport(splog *tui.Splog, report *engine.Report, local bool) {
	for _, b := range report.Backups {
		splog.Info("Backed up %s as %s", tui.ColorBranchName(b.Branch), tui.ColorBranchName(b.Name))
	}
	if report.SnapshotPath != "" {
		splog.Debug("Snapshot saved to %s", report.SnapshotPath)
	}

	changed := 0
	for _, r := range report.Steps {
		if r.Changed() {
			changed++
		}
	}
	target := report.Plan.Target
	splog.Success("%s is at %s (%d of %d branches rewritten)",
		tui.ColorBranchName(target.Branch), tui.ColorDim(guwerrors.ShortSHA(report.Target)), changed, len(report.Steps))

	if local {
		splog.Tip("Nothing was pushed (--local).")
	} else if len(report.Pushed) > 0 {
		splog.Info("Pushed %s", strings.Join(report.Pushed, ", "))
	}
}

// commit runs the continue plan for an edited config and saves it once every
// step, and every push unless local, succeeded
func commit(ctx *runtime.Context, before, after *config.Config, opts plan.Options, flags RunFlags) error {
	pinned := plan.PinnedFroms(before)
	for name, from := range opts.Froms {
		pinned.Froms[name] = from
		delete(pinned.FromFallbacks, name)
	}
	pinned.Starts = opts.Starts

	if _, err := execute(ctx, after, plan.ModeContinue, pinned, flags); err != nil {
		return err
	}
	if flags.DryRun {
		return nil
	}
	return ctx.SaveConfig(after)
}
