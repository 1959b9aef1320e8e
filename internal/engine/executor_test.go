package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/engine"
	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/testhelpers"
)

// forkScene is a fork of an upstream project: upstream integrated feature1 in
// its own way, feature2 is under review and feature3 is still pending.
type forkScene struct {
	fake *testhelpers.FakeBackend
	cfg  *config.Config
	main string
	up   string
}

func newForkScene(t *testing.T) *forkScene {
	t.Helper()
	fake := testhelpers.NewFakeBackend()

	main := fake.Chain("", "init", "m1")
	feature1 := fake.Chain(main, "f1")
	feature2 := fake.Chain(feature1, "f2")
	feature3 := fake.Chain(feature2, "f3")
	up := fake.Chain(main, "u1", "f1-upstream")

	fake.Publish("origin", "main", main)
	fake.Publish("origin", "feature1", feature1)
	fake.Publish("origin", "feature2", feature2)
	fake.Publish("origin", "feature3", feature3)
	fake.Publish("up", "master", up)
	require.NoError(t, engine.FetchAll(context.Background(), fake, []string{"origin", "up"}))

	fake.SetBranch("main", main)
	require.NoError(t, fake.Checkout(context.Background(), "main"))

	cfg := &config.Config{
		Remotes:  []config.Remote{{Name: "origin", URL: "file:///origin"}, {Name: "up", URL: "file:///up"}},
		Source:   config.BranchRef{Remote: "origin", Branch: "main"},
		Target:   config.BranchRef{Remote: "origin", Branch: "final"},
		Upstream: &config.BranchRef{Remote: "up", Branch: "master"},
		Features: []config.Feature{
			{Remote: "origin", Name: "feature1", Status: status.Integrated},
			{Remote: "origin", Name: "feature2", Status: status.Merging},
			{Remote: "origin", Name: "feature3", Status: status.Pending},
		},
	}
	require.NoError(t, cfg.Validate())
	return &forkScene{fake: fake, cfg: cfg, main: main, up: up}
}

func (s *forkScene) run(t *testing.T, opts engine.RunOptions) (*engine.Report, error) {
	t.Helper()
	require.NoError(t, engine.FetchAll(context.Background(), s.fake, []string{"origin", "up"}))
	p := plan.Build(s.cfg, plan.ModeSync, plan.Options{})
	return engine.NewExecutor(s.fake, nil, nil).Run(context.Background(), p, opts)
}

func TestRunSync(t *testing.T) {
	s := newForkScene(t)

	report, err := s.run(t, engine.RunOptions{})
	require.NoError(t, err)

	branches := s.fake.LocalBranches()
	require.Equal(t, s.up, branches["main"])
	require.Equal(t, []string{"init", "m1", "u1", "f1-upstream", "f2"}, s.fake.Patches(branches["feature2-reviewing"]))
	require.Equal(t, []string{"init", "m1", "u1", "f1-upstream", "f2", "f3"}, s.fake.Patches(branches["feature3"]))
	require.Equal(t, branches["feature3"], branches["final"])
	require.Equal(t, branches["final"], report.Target)

	current, err := s.fake.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "final", current)

	require.ElementsMatch(t, []string{
		"origin/main", "origin/feature2-reviewing", "origin/feature3", "origin/final",
	}, report.Pushed)
	serverFinal, ok := s.fake.ServerBranch("origin", "final")
	require.True(t, ok)
	require.Equal(t, branches["final"], serverFinal)

	// the reviewed branch itself is left alone
	serverFeature2, _ := s.fake.ServerBranch("origin", "feature2")
	require.Equal(t, []string{"init", "m1", "f1", "f2"}, s.fake.Patches(serverFeature2))
}

func TestRunIsIdempotent(t *testing.T) {
	s := newForkScene(t)

	_, err := s.run(t, engine.RunOptions{})
	require.NoError(t, err)
	first := s.fake.LocalBranches()
	pushes := len(s.fake.Pushed)

	var replayed []string
	s.fake.BeforeRebase = func(_ context.Context, branch string) {
		replayed = append(replayed, branch)
	}

	report, err := s.run(t, engine.RunOptions{})
	require.NoError(t, err)
	require.Equal(t, first, s.fake.LocalBranches())
	require.Empty(t, report.Pushed)
	require.Len(t, s.fake.Pushed, pushes)
	for _, step := range report.Steps {
		require.False(t, step.Changed(), step.Step.String())
	}
	require.Empty(t, replayed, "branches already on their base are not replayed")
}

func TestRunRollsBack(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *testhelpers.FakeBackend)
		wantErr error
		code    int
	}{
		{
			name:    "conflict on first rebase",
			setup:   func(f *testhelpers.FakeBackend) { f.Conflicts["feature2-reviewing"] = true },
			wantErr: guwerrors.ErrRebaseConflict,
			code:    guwerrors.ExitConflict,
		},
		{
			name:    "conflict on last rebase",
			setup:   func(f *testhelpers.FakeBackend) { f.Conflicts["feature3"] = true },
			wantErr: guwerrors.ErrRebaseConflict,
			code:    guwerrors.ExitConflict,
		},
		{
			name:    "backend failure mid chain",
			setup:   func(f *testhelpers.FakeBackend) { f.RebaseErrors["feature3"] = errors.New("disk full") },
			wantErr: guwerrors.ErrBackend,
			code:    guwerrors.ExitBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newForkScene(t)
			stale := s.fake.Chain(s.main, "old-f3")
			s.fake.SetBranch("feature3", stale)
			tt.setup(s.fake)

			before := s.fake.LocalBranches()
			servers := s.fake.ServerBranches("origin")

			report, err := s.run(t, engine.RunOptions{Backup: true})
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.code, guwerrors.ExitCode(err))

			var stepErr *engine.StepFailedError
			require.ErrorAs(t, err, &stepErr)

			require.Equal(t, before, s.fake.LocalBranches())
			require.Empty(t, report.Backups)
			require.Empty(t, s.fake.Pushed)
			require.Equal(t, servers, s.fake.ServerBranches("origin"))
			require.False(t, s.fake.IsRebaseInProgress(context.Background()))

			current, _ := s.fake.CurrentBranch()
			require.Equal(t, "main", current)
		})
	}
}

func TestRunMissingFeatureBranch(t *testing.T) {
	s := newForkScene(t)
	s.cfg.Features = append(s.cfg.Features, config.Feature{Remote: "origin", Name: "ghost"})
	before := s.fake.LocalBranches()

	_, err := s.run(t, engine.RunOptions{})
	require.ErrorIs(t, err, guwerrors.ErrBranchNotFound)
	require.Equal(t, before, s.fake.LocalBranches())
}

func TestRunPushFailureKeepsLocalState(t *testing.T) {
	s := newForkScene(t)
	s.fake.PushErrors["origin/feature3"] = errors.New("rejected")

	report, err := s.run(t, engine.RunOptions{})
	require.ErrorIs(t, err, guwerrors.ErrPush)
	require.Equal(t, guwerrors.ExitPush, guwerrors.ExitCode(err))

	var pushErr *guwerrors.PushError
	require.ErrorAs(t, err, &pushErr)
	require.Len(t, pushErr.Failures, 1)
	require.Equal(t, "feature3", pushErr.Failures[0].Branch)

	branches := s.fake.LocalBranches()
	require.Equal(t, []string{"init", "m1", "u1", "f1-upstream", "f2", "f3"}, s.fake.Patches(branches["feature3"]))
	require.Contains(t, report.Pushed, "origin/final")
}

func TestRunLocal(t *testing.T) {
	s := newForkScene(t)

	report, err := s.run(t, engine.RunOptions{Local: true})
	require.NoError(t, err)
	require.Empty(t, report.Pushed)
	require.Empty(t, s.fake.Pushed)
	require.NotEmpty(t, report.Target)
}

func TestRunBackup(t *testing.T) {
	s := newForkScene(t)
	remoteFeature3, _ := s.fake.ServerBranch("origin", "feature3")

	report, err := s.run(t, engine.RunOptions{Backup: true})
	require.NoError(t, err)

	var names []string
	for _, b := range report.Backups {
		names = append(names, b.Name)
	}
	require.Equal(t, []string{"main-2024-03-01", "feature2-reviewing-2024-03-01", "feature3-2024-03-01"}, names)

	branches := s.fake.LocalBranches()
	require.Equal(t, remoteFeature3, branches["feature3-2024-03-01"])
	require.Equal(t, s.main, branches["main-2024-03-01"])

	backup, ok := s.fake.ServerBranch("origin", "feature3-2024-03-01")
	require.True(t, ok)
	require.Equal(t, remoteFeature3, backup)
}

type recordingReporter struct {
	engine.NopReporter
	started  []string
	finished []string
}

func (r *recordingReporter) StepStarted(_ int, step plan.Step) {
	r.started = append(r.started, step.Branch)
}

func (r *recordingReporter) StepFinished(_ int, step plan.Step, _ string) {
	r.finished = append(r.finished, step.Branch)
}

func TestRunReportsProgress(t *testing.T) {
	s := newForkScene(t)
	reporter := &recordingReporter{}

	p := plan.Build(s.cfg, plan.ModeSync, plan.Options{})
	_, err := engine.NewExecutor(s.fake, nil, reporter).Run(context.Background(), p, engine.RunOptions{Local: true})
	require.NoError(t, err)
	require.Equal(t, []string{"main", "feature2-reviewing", "feature3", "final"}, reporter.started)
	require.Equal(t, reporter.started, reporter.finished)
}

func TestRunSavesSnapshot(t *testing.T) {
	s := newForkScene(t)
	dir := t.TempDir()

	p := plan.Build(s.cfg, plan.ModeSync, plan.Options{})
	executor := engine.NewExecutor(s.fake, nil, nil)
	executor.SnapshotDir = dir
	report, err := executor.Run(context.Background(), p, engine.RunOptions{Local: true})
	require.NoError(t, err)
	require.NotEmpty(t, report.SnapshotPath)

	snap, err := engine.LoadSnapshot(report.SnapshotPath)
	require.NoError(t, err)
	require.Equal(t, "main", snap.CurrentBranch)
	require.Equal(t, s.main, snap.BranchSHAs["main"])
	require.NotContains(t, snap.BranchSHAs, "final")
	require.Equal(t, []string{"main", "feature2-reviewing", "feature3", "final"}, snap.Branches)
}

func TestFetchAll(t *testing.T) {
	fake := testhelpers.NewFakeBackend()
	fake.Publish("origin", "main", fake.Commit("", "init"))
	fake.Publish("up", "master", fake.Commit("", "init"))
	fake.FetchErrors["up"] = errors.New("network unreachable")

	err := engine.FetchAll(context.Background(), fake, []string{"origin", "up"})
	require.ErrorIs(t, err, guwerrors.ErrBackend)
	require.Contains(t, err.Error(), "fetch up")
	require.Equal(t, []string{"origin"}, fake.Fetched)
}

type cancelingReporter struct {
	engine.NopReporter
	after  string
	cancel context.CancelFunc
}

func (r *cancelingReporter) StepFinished(_ int, step plan.Step, _ string) {
	if step.Branch == r.after {
		r.cancel()
	}
}

func TestRunCancelledRollsBack(t *testing.T) {
	s := newForkScene(t)
	before := s.fake.LocalBranches()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reporter := &cancelingReporter{after: "feature2-reviewing", cancel: cancel}

	p := plan.Build(s.cfg, plan.ModeSync, plan.Options{})
	_, err := engine.NewExecutor(s.fake, nil, reporter).Run(ctx, p, engine.RunOptions{})
	require.ErrorIs(t, err, context.Canceled)

	var stepErr *engine.StepFailedError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "feature3", stepErr.Step.Branch)

	require.Equal(t, before, s.fake.LocalBranches())
	require.Empty(t, s.fake.Pushed)
}

func TestRunRollsBackAtEveryPosition(t *testing.T) {
	// plan: move main, rebase feature2-reviewing, feature3, feature4, feature5, move final
	newLongScene := func(t *testing.T) *forkScene {
		s := newForkScene(t)
		feature3, ok := s.fake.ServerBranch("origin", "feature3")
		require.True(t, ok)
		feature4 := s.fake.Chain(feature3, "f4")
		s.fake.Publish("origin", "feature4", feature4)
		s.fake.Publish("origin", "feature5", s.fake.Chain(feature4, "f5"))
		s.cfg.Features = append(s.cfg.Features,
			config.Feature{Remote: "origin", Name: "feature4", Status: status.Pending},
			config.Feature{Remote: "origin", Name: "feature5", Status: status.Pending},
		)
		require.NoError(t, s.cfg.Validate())
		return s
	}

	tests := []struct {
		name   string
		branch string
		index  int
	}{
		{name: "source move", branch: "main", index: 0},
		{name: "middle rebase", branch: "feature4", index: 3},
		{name: "target move", branch: "final", index: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLongScene(t)
			before := s.fake.LocalBranches()
			servers := s.fake.ServerBranches("origin")
			s.fake.MoveErrors[tt.branch] = errors.New("unable to create lock file")

			report, err := s.run(t, engine.RunOptions{Backup: true})
			require.ErrorIs(t, err, guwerrors.ErrBackend)

			var stepErr *engine.StepFailedError
			require.ErrorAs(t, err, &stepErr)
			require.Equal(t, tt.index, stepErr.Index)
			require.Equal(t, tt.branch, stepErr.Step.Branch)

			require.Equal(t, before, s.fake.LocalBranches())
			require.Empty(t, report.Backups)
			require.Empty(t, s.fake.Pushed)
			require.Equal(t, servers, s.fake.ServerBranches("origin"))

			current, _ := s.fake.CurrentBranch()
			require.Equal(t, "main", current)
		})
	}
}

func TestRunStopsOnRemoteLookupError(t *testing.T) {
	s := newForkScene(t)
	feature3, ok := s.fake.ServerBranch("origin", "feature3")
	require.True(t, ok)
	s.fake.Publish("origin", "feature3-next", s.fake.Chain(feature3, "f3-fixup"))
	require.NoError(t, engine.FetchAll(context.Background(), s.fake, []string{"origin", "up"}))
	before := s.fake.LocalBranches()

	// the published tip is looked up separately from the overridden start
	s.fake.RevisionErrors["origin/feature3"] = guwerrors.NewBackendError("rev-parse origin/feature3", errors.New("bad object"))

	p := plan.Build(s.cfg, plan.ModeSync, plan.Options{Starts: map[string]string{"feature3": "origin/feature3-next"}})
	_, err := engine.NewExecutor(s.fake, nil, nil).Run(context.Background(), p, engine.RunOptions{})
	require.ErrorIs(t, err, guwerrors.ErrBackend)

	var stepErr *engine.StepFailedError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "feature3", stepErr.Step.Branch)
	require.Equal(t, before, s.fake.LocalBranches())
	require.Empty(t, s.fake.Pushed)
}
