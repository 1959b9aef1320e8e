package engine

import (
	"context"
	"errors"
	"fmt"

	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/plan"
)

// Logger is the subset of the CLI logger the executor writes to
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Reporter receives progress events while a plan runs
type Reporter interface {
	StepStarted(index int, step plan.Step)
	StepFinished(index int, step plan.Step, commit string)
	StepFailed(index int, step plan.Step, err error)
	Pushing(remote, branch string)
}

// NopReporter ignores every event
type NopReporter struct{}

func (NopReporter) StepStarted(int, plan.Step) {}

func (NopReporter) StepFinished(int, plan.Step, string) {}

func (NopReporter) StepFailed(int, plan.Step, error) {}

func (NopReporter) Pushing(string, string) {}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

func (nopLogger) Info(string, ...interface{}) {}

func (nopLogger) Warn(string, ...interface{}) {}

// RunOptions control side effects of a run
type RunOptions struct {
	// Backup copies the remote state of each rewritten branch before rebasing
	Backup bool
	// Local skips pushing
	Local bool
}

// StepResult is the outcome of one applied step
type StepResult struct {
	Step plan.Step
	// Before is the published tip of the branch, empty when it was never pushed
	Before string
	// After is the new tip
	After string
}

// Changed reports whether the step rewrote the branch
func (r StepResult) Changed() bool {
	return r.Before != r.After
}

// Backup is a branch copied before its source was rewritten
type Backup struct {
	Remote string
	Branch string
	Name   string
}

// Report summarizes a run
type Report struct {
	Plan    *plan.Plan
	Steps   []StepResult
	Backups []Backup
	// Pushed lists remote/branch pairs that were pushed
	Pushed []string
	// Target is the commit the target branch ends up at
	Target string
	// SnapshotPath is where the pre-run snapshot was saved, if anywhere
	SnapshotPath string
}

// StepFailedError wraps the failure of a single step after rollback
type StepFailedError struct {
	Index int
	Step  plan.Step
	Err   error
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Step, e.Err)
}

func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// Executor applies plans to a working copy
type Executor struct {
	backend  Backend
	log      Logger
	reporter Reporter
	// SnapshotDir, when set, receives a JSON copy of each pre-run snapshot
	SnapshotDir string
}

// NewExecutor creates an executor. Nil logger or reporter are replaced by no-ops.
func NewExecutor(backend Backend, log Logger, reporter Reporter) *Executor {
	if log == nil {
		log = nopLogger{}
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Executor{backend: backend, log: log, reporter: reporter}
}

// Run applies every step of the plan in order. When a step fails, every local
// branch the plan touches is restored to its pre-run tip, backups created by
// the run are deleted and HEAD returns to where it was. Push failures happen
// after the local chain is complete and never trigger a rollback.
func (e *Executor) Run(ctx context.Context, p *plan.Plan, opts RunOptions) (*Report, error) {
	snap, err := TakeSnapshot(e.backend, p.Mode.String(), p.Branches())
	if err != nil {
		return nil, err
	}
	report := &Report{Plan: p}

	if e.SnapshotDir != "" {
		path, err := snap.Save(e.SnapshotDir, DefaultMaxSnapshots)
		if err != nil {
			e.log.Warn("could not save snapshot: %v", err)
		} else {
			report.SnapshotPath = path
			e.log.Debug("saved snapshot to %s", path)
		}
	}

	if err := e.apply(ctx, p, opts, report); err != nil {
		e.log.Debug("rolling back %d branch(es)", len(snap.Branches))
		// restore even when the failure was a cancellation
		if rbErr := e.rollback(context.WithoutCancel(ctx), snap, report); rbErr != nil {
			return report, errors.Join(err, guwerrors.NewBackendError("rollback", rbErr))
		}
		return report, err
	}

	if opts.Local {
		return report, nil
	}
	return report, e.push(ctx, report)
}

func (e *Executor) apply(ctx context.Context, p *plan.Plan, opts RunOptions, report *Report) error {
	base, err := e.backend.Revision(p.Base)
	if err != nil {
		return fmt.Errorf("cannot resolve base %s: %w", p.Base, err)
	}
	if err := e.backend.Detach(ctx, base); err != nil {
		return err
	}

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return &StepFailedError{Index: i, Step: step, Err: err}
		}

		e.reporter.StepStarted(i, step)
		e.log.Debug("%s", step)

		var result StepResult
		switch step.Action {
		case plan.ActionRebase:
			result, err = e.rebase(ctx, p, step, opts, report)
		default:
			result, err = e.move(step, opts, report)
		}
		if err != nil {
			e.reporter.StepFailed(i, step, err)
			return &StepFailedError{Index: i, Step: step, Err: err}
		}

		report.Steps = append(report.Steps, result)
		e.reporter.StepFinished(i, step, result.After)
	}

	if len(report.Steps) > 0 {
		report.Target = report.Steps[len(report.Steps)-1].After
	}
	return e.backend.Checkout(ctx, p.Target.Branch)
}

func (e *Executor) rebase(ctx context.Context, p *plan.Plan, step plan.Step, opts RunOptions, report *Report) (StepResult, error) {
	result := StepResult{Step: step}

	start, err := e.resolveFirst(step.Start, step.Fallback)
	if err != nil {
		return result, err
	}
	onto, err := e.backend.Revision(step.Onto)
	if err != nil {
		return result, err
	}
	from, err := e.forkPoint(start, step.From, step.FromFallback, step.Onto, p.Source)
	if err != nil {
		return result, err
	}

	// Before is what the remote holds now, which differs from start when the start is overridden
	published := step.Remote + "/" + step.Branch
	exists, err := e.exists(published)
	if err != nil {
		return result, err
	}
	if exists {
		if result.Before, err = e.backend.Revision(published); err != nil {
			return result, err
		}
	}

	if opts.Backup {
		saved := start
		if result.Before != "" {
			saved = result.Before
		}
		if err := e.backend.CreateOrMoveBranch(step.Branch, saved); err != nil {
			return result, err
		}
		if err := e.backup(step, report); err != nil {
			return result, err
		}
	}

	if err := e.backend.CreateOrMoveBranch(step.Branch, start); err != nil {
		return result, err
	}

	// already on its base: replaying would only restamp the commits
	if from == onto {
		onBase, err := e.backend.IsAncestor(onto, start)
		if err != nil {
			return result, err
		}
		if onBase {
			result.After = start
			return result, nil
		}
	}

	after, err := e.backend.Rebase(ctx, step.Branch, onto, from)
	if err != nil {
		return result, err
	}
	result.After = after
	return result, nil
}

func (e *Executor) move(step plan.Step, opts RunOptions, report *Report) (StepResult, error) {
	result := StepResult{Step: step}

	onto, err := e.backend.Revision(step.Onto)
	if err != nil {
		return result, err
	}

	exists, err := e.exists(step.Start)
	if err != nil {
		return result, err
	}
	if exists {
		before, err := e.backend.Revision(step.Start)
		if err != nil {
			return result, err
		}
		result.Before = before
		if opts.Backup && before != onto {
			if err := e.backend.CreateOrMoveBranch(step.Branch, before); err != nil {
				return result, err
			}
			if err := e.backup(step, report); err != nil {
				return result, err
			}
		}
	}

	if err := e.backend.CreateOrMoveBranch(step.Branch, onto); err != nil {
		return result, err
	}
	result.After = onto
	return result, nil
}

func (e *Executor) backup(step plan.Step, report *Report) error {
	name, err := e.backend.BackupBranch(step.Branch)
	if err != nil {
		return fmt.Errorf("failed to back up %s: %w", step.Branch, err)
	}
	e.log.Debug("backed up %s to %s", step.Branch, name)
	report.Backups = append(report.Backups, Backup{Remote: step.Remote, Branch: step.Branch, Name: name})
	return nil
}

func (e *Executor) rollback(ctx context.Context, snap *Snapshot, report *Report) error {
	err := snap.Restore(ctx, e.backend)

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, b := range report.Backups {
		if delErr := e.backend.DeleteBranch(b.Name); delErr != nil {
			errs = append(errs, fmt.Errorf("failed to delete backup %s: %w", b.Name, delErr))
		}
	}
	report.Backups = nil
	report.Steps = nil
	report.Target = ""
	return errors.Join(errs...)
}

// push sends backups first, then every rewritten branch
func (e *Executor) push(ctx context.Context, report *Report) error {
	var failures []guwerrors.PushFailure

	pushOne := func(remote, branch string) {
		e.reporter.Pushing(remote, branch)
		if err := e.backend.Push(ctx, remote, branch); err != nil {
			e.log.Warn("failed to push %s to %s: %v", branch, remote, err)
			failures = append(failures, guwerrors.PushFailure{Remote: remote, Branch: branch, Err: err})
			return
		}
		report.Pushed = append(report.Pushed, remote+"/"+branch)
	}

	for _, b := range report.Backups {
		pushOne(b.Remote, b.Name)
	}
	for _, r := range report.Steps {
		if !r.Changed() {
			e.log.Debug("%s is up to date on %s", r.Step.Branch, r.Step.Remote)
			continue
		}
		pushOne(r.Step.Remote, r.Step.Branch)
	}

	if len(failures) > 0 {
		return &guwerrors.PushError{Failures: failures}
	}
	return nil
}

// resolveFirst resolves the first ref of the list that exists
func (e *Executor) resolveFirst(refs ...string) (string, error) {
	var lastErr error
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		sha, err := e.backend.Revision(ref)
		if err == nil {
			return sha, nil
		}
		if !errors.Is(err, guwerrors.ErrBranchNotFound) {
			return "", err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = guwerrors.NewBranchNotFoundError("")
	}
	return "", lastErr
}

// forkPoint picks the commit a branch's own commits sit on: among the
// candidates that are ancestors of start, the one closest to start. When no
// candidate is an ancestor the first one that exists is used.
func (e *Executor) forkPoint(start string, candidates ...string) (string, error) {
	best := ""
	for _, ref := range candidates {
		if ref == "" {
			continue
		}
		sha, err := e.backend.Revision(ref)
		if errors.Is(err, guwerrors.ErrBranchNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		ok, err := e.backend.IsAncestor(sha, start)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		if best == "" {
			best = sha
			continue
		}
		closer, err := e.backend.IsAncestor(best, sha)
		if err != nil {
			return "", err
		}
		if closer {
			best = sha
		}
	}
	if best != "" {
		return best, nil
	}
	e.log.Debug("no fork point found below %s, using %s", guwerrors.ShortSHA(start), candidates[0])
	return e.resolveFirst(candidates...)
}

func (e *Executor) exists(ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	_, err := e.backend.Revision(ref)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, guwerrors.ErrBranchNotFound) {
		return false, nil
	}
	return false, err
}
