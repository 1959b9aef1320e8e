package actions_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/engine"
	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/git"
	"guw.dev/guw/internal/output"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/status"
	"guw.dev/guw/internal/tui"
	"guw.dev/guw/testhelpers"
)

// actionScene is a fork whose upstream integrated feature1 in its own way,
// with feature2 under review and feature3 pending. Every action reuses the
// same fake working copy, like a kept clone.
type actionScene struct {
	fake       *testhelpers.FakeBackend
	ctx        *runtime.Context
	out        *bytes.Buffer
	configPath string
	opened     []*testhelpers.FakeWorkspace
}

func newActionScene(t *testing.T) *actionScene {
	t.Helper()
	fake := testhelpers.NewFakeBackend()

	main := fake.Chain("", "init", "m1")
	feature1 := fake.Chain(main, "f1")
	feature2 := fake.Chain(feature1, "f2")
	feature3 := fake.Chain(feature2, "f3")
	fake.Publish("origin", "main", main)
	fake.Publish("origin", "feature1", feature1)
	fake.Publish("origin", "feature2", feature2)
	fake.Publish("origin", "feature3", feature3)
	fake.Publish("up", "master", fake.Chain(main, "u1", "f1-upstream"))

	cfg := &config.Config{
		Remotes:  []config.Remote{{Name: "origin", URL: "git@github.com:fork/project.git"}, {Name: "up", URL: "https://github.com/project/project.git"}},
		Source:   config.BranchRef{Remote: "origin", Branch: "main"},
		Target:   config.BranchRef{Remote: "origin", Branch: "final"},
		Upstream: &config.BranchRef{Remote: "up", Branch: "master"},
		Features: []config.Feature{
			{Remote: "origin", Name: "feature1", Status: status.Integrated},
			{Remote: "origin", Name: "feature2", Status: status.Merging, PR: "https://example.com/pr/2"},
			{Remote: "origin", Name: "feature3", Status: status.Pending, Summary: "Add file3.txt"},
		},
	}
	path := filepath.Join(t.TempDir(), "guw.toml")
	require.NoError(t, cfg.Save(path))

	lipgloss.SetColorProfile(termenv.Ascii)
	s := &actionScene{fake: fake, out: &bytes.Buffer{}, configPath: path}
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Writer: s.out})
	require.NoError(t, err)

	s.ctx = runtime.NewContext(context.Background(), splog, path)
	s.ctx.Interactive = false
	s.ctx.SnapshotDir = ""
	s.ctx.OpenWorkspace = func(context.Context, *config.Config, git.WorkspaceOptions) (engine.Workspace, error) {
		ws := &testhelpers.FakeWorkspace{Fake: fake, Path: "/tmp/guw-clone"}
		s.opened = append(s.opened, ws)
		return ws, nil
	}
	return s
}

func (s *actionScene) config(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(s.configPath)
	require.NoError(t, err)
	return cfg
}

func (s *actionScene) serverPatches(t *testing.T, branch string) []string {
	t.Helper()
	sha, ok := s.fake.ServerBranch("origin", branch)
	require.True(t, ok, "origin/%s does not exist", branch)
	return s.fake.Patches(sha)
}

func (s *actionScene) sync(t *testing.T) {
	t.Helper()
	require.NoError(t, actions.SyncAction(s.ctx, actions.SyncOptions{}))
}

var upstream = []string{"init", "m1", "u1", "f1-upstream"}

func with(base []string, patches ...string) []string {
	return append(append([]string(nil), base...), patches...)
}

func TestSyncAction(t *testing.T) {
	s := newActionScene(t)
	before := s.config(t)

	s.sync(t)

	require.Equal(t, upstream, s.serverPatches(t, "main"))
	require.Equal(t, with(upstream, "f2"), s.serverPatches(t, "feature2-reviewing"))
	require.Equal(t, with(upstream, "f2", "f3"), s.serverPatches(t, "feature3"))
	require.Equal(t, with(upstream, "f2", "f3"), s.serverPatches(t, "final"))
	require.Equal(t, []string{"init", "m1", "f1", "f2"}, s.serverPatches(t, "feature2"), "feature2 itself is untouched")
	require.ElementsMatch(t, []string{"origin", "up"}, s.fake.Fetched)

	require.Len(t, s.opened, 1)
	require.True(t, s.opened[0].Closed)
	require.Equal(t, before, s.config(t))
	require.Contains(t, s.out.String(), "final is at")

	t.Run("second run pushes nothing new", func(t *testing.T) {
		final, _ := s.fake.ServerBranch("origin", "final")
		s.fake.Pushed = nil
		s.sync(t)
		again, _ := s.fake.ServerBranch("origin", "final")
		require.Equal(t, final, again)
		require.Empty(t, s.fake.Pushed)
	})
}

func TestSyncDryRun(t *testing.T) {
	s := newActionScene(t)

	require.NoError(t, actions.SyncAction(s.ctx, actions.SyncOptions{RunFlags: actions.RunFlags{DryRun: true}}))
	require.Empty(t, s.opened)
	require.Empty(t, s.fake.Pushed)
	require.Contains(t, s.out.String(), "sync plan on up/master")
	require.Contains(t, s.out.String(), "rebase feature2-reviewing")
}

func TestSyncLocal(t *testing.T) {
	s := newActionScene(t)

	require.NoError(t, actions.SyncAction(s.ctx, actions.SyncOptions{RunFlags: actions.RunFlags{Local: true}}))
	require.Empty(t, s.fake.Pushed)
	require.Equal(t, with(upstream, "f2", "f3"), s.fake.Patches(s.fake.LocalBranches()["final"]))
	require.Contains(t, s.out.String(), "Nothing was pushed")
}

func TestAddAction(t *testing.T) {
	t.Run("at the end", func(t *testing.T) {
		s := newActionScene(t)
		s.sync(t)
		tip, _ := s.fake.ServerBranch("origin", "feature3")
		s.fake.Publish("origin", "feature4", s.fake.Chain(tip, "f4"))

		err := actions.AddAction(s.ctx, actions.AddOptions{Name: "feature4", After: "feature3", Summary: "Add file4.txt"})
		require.NoError(t, err)

		cfg := s.config(t)
		require.Len(t, cfg.Features, 4)
		require.Equal(t, config.Feature{Remote: "origin", Name: "feature4", Summary: "Add file4.txt", Status: status.Pending}, cfg.Features[3])
		require.Equal(t, with(upstream, "f2", "f3", "f4"), s.serverPatches(t, "final"))
	})

	t.Run("in the middle", func(t *testing.T) {
		s := newActionScene(t)
		s.sync(t)
		reviewing, _ := s.fake.ServerBranch("origin", "feature2-reviewing")
		s.fake.Publish("origin", "between", s.fake.Chain(reviewing, "b"))

		require.NoError(t, actions.AddAction(s.ctx, actions.AddOptions{Name: "between", After: "feature2"}))

		require.Equal(t, with(upstream, "f2", "b"), s.serverPatches(t, "between"))
		require.Equal(t, with(upstream, "f2", "b", "f3"), s.serverPatches(t, "feature3"))
		require.Equal(t, with(upstream, "f2", "b", "f3"), s.serverPatches(t, "final"))
	})

	t.Run("missing branch leaves config untouched", func(t *testing.T) {
		s := newActionScene(t)
		before := s.config(t)

		err := actions.AddAction(s.ctx, actions.AddOptions{Name: "ghost", After: config.EndPosition})
		require.ErrorIs(t, err, guwerrors.ErrBranchNotFound)
		require.Equal(t, before, s.config(t))
		require.Empty(t, s.fake.Pushed)
	})

	t.Run("before a merging feature breaks status order", func(t *testing.T) {
		s := newActionScene(t)
		err := actions.AddAction(s.ctx, actions.AddOptions{Name: "early", After: "feature1"})
		require.ErrorIs(t, err, guwerrors.ErrState)
		require.Empty(t, s.opened)
	})
}

func TestUpdateAction(t *testing.T) {
	t.Run("pr link and a second review", func(t *testing.T) {
		s := newActionScene(t)
		s.sync(t)
		merging := status.Merging
		pr := "https://example.com/pr/3"

		err := actions.UpdateAction(s.ctx, actions.UpdateOptions{Name: "feature2", PR: &pr})
		require.NoError(t, err)
		require.Equal(t, pr, s.config(t).Features[1].PR)

		// only one feature may be under review
		err = actions.UpdateAction(s.ctx, actions.UpdateOptions{Name: "feature3", Status: &merging})
		require.ErrorIs(t, err, guwerrors.ErrValidation)
	})

	t.Run("new content from another ref", func(t *testing.T) {
		s := newActionScene(t)
		s.sync(t)
		reviewing, _ := s.fake.ServerBranch("origin", "feature2-reviewing")
		s.fake.Publish("origin", "feature3-v2", s.fake.Chain(reviewing, "f3v2"))

		require.NoError(t, actions.UpdateAction(s.ctx, actions.UpdateOptions{Name: "feature3", From: "origin/feature3-v2"}))
		require.Equal(t, with(upstream, "f2", "f3v2"), s.serverPatches(t, "feature3"))
		require.Equal(t, with(upstream, "f2", "f3v2"), s.serverPatches(t, "final"))
	})

	t.Run("integrated back to pending is rejected", func(t *testing.T) {
		s := newActionScene(t)
		pending := status.Pending
		err := actions.UpdateAction(s.ctx, actions.UpdateOptions{Name: "feature1", Status: &pending})
		require.ErrorIs(t, err, guwerrors.ErrInvalidTransition)
		require.Empty(t, s.opened)
	})
}

func TestUpdateToMerging(t *testing.T) {
	s := newActionScene(t)
	s.sync(t)
	integrated, merging := status.Integrated, status.Merging

	require.NoError(t, actions.UpdateAction(s.ctx, actions.UpdateOptions{Name: "feature2", Status: &integrated}))
	require.NoError(t, actions.UpdateAction(s.ctx, actions.UpdateOptions{Name: "feature3", Status: &merging}))

	cfg := s.config(t)
	require.Equal(t, status.Merging, cfg.Features[2].Status)
	require.Equal(t, with(upstream, "f3"), s.serverPatches(t, "feature3-reviewing"))
	require.Equal(t, with(upstream, "f3"), s.serverPatches(t, "feature3"))
	require.Equal(t, with(upstream, "f3"), s.serverPatches(t, "final"))
}

func TestRemoveAction(t *testing.T) {
	s := newActionScene(t)
	s.sync(t)
	before := s.config(t)

	err := actions.RemoveAction(s.ctx, actions.RemoveOptions{Name: "feature2"})
	require.ErrorIs(t, err, guwerrors.ErrState)
	require.Equal(t, before, s.config(t))

	require.NoError(t, actions.RemoveAction(s.ctx, actions.RemoveOptions{Name: "feature2", Force: true}))

	cfg := s.config(t)
	require.Len(t, cfg.Features, 2)
	require.Nil(t, cfg.Merging())
	require.Equal(t, with(upstream, "f3"), s.serverPatches(t, "feature3"))
	require.Equal(t, with(upstream, "f3"), s.serverPatches(t, "final"))
	require.Equal(t, with(upstream, "f2"), s.serverPatches(t, "feature2-reviewing"))
}

func TestIntegrateAction(t *testing.T) {
	s := newActionScene(t)
	s.sync(t)

	// upstream accepts the reviewing branch
	reviewing, _ := s.fake.ServerBranch("origin", "feature2-reviewing")
	s.fake.Publish("up", "master", reviewing)

	require.NoError(t, actions.IntegrateAction(s.ctx, actions.IntegrateOptions{Name: "feature2", Sync: true}))

	cfg := s.config(t)
	require.Equal(t, status.Integrated, cfg.Features[1].Status)
	require.Equal(t, with(upstream, "f2"), s.serverPatches(t, "main"))
	require.Equal(t, with(upstream, "f2", "f3"), s.serverPatches(t, "feature3"))
	require.Equal(t, with(upstream, "f2", "f3"), s.serverPatches(t, "final"))

	err := actions.IntegrateAction(s.ctx, actions.IntegrateOptions{Name: "nope"})
	require.ErrorIs(t, err, guwerrors.ErrState)
}

func TestFailedRunKeepsConfig(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		s := newActionScene(t)
		s.sync(t)
		before := s.config(t)
		// feature4 was started on the old feature2, so it has to be replayed
		tip, _ := s.fake.ServerBranch("origin", "feature2")
		s.fake.Publish("origin", "feature4", s.fake.Chain(tip, "f4"))
		s.fake.Conflicts["feature4"] = true
		s.fake.Pushed = nil

		err := actions.AddAction(s.ctx, actions.AddOptions{Name: "feature4", After: config.EndPosition})
		require.ErrorIs(t, err, guwerrors.ErrRebaseConflict)
		require.Equal(t, guwerrors.ExitConflict, guwerrors.ExitCode(err))
		require.Equal(t, before, s.config(t))
		require.Empty(t, s.fake.Pushed)
		require.Contains(t, s.out.String(), "Hit conflict rebasing feature4")
		require.Contains(t, s.out.String(), "conflict.txt")
	})

	t.Run("push failure", func(t *testing.T) {
		s := newActionScene(t)
		before := s.config(t)
		s.fake.PushErrors["origin/final"] = errors.New("remote hung up")

		err := actions.SyncAction(s.ctx, actions.SyncOptions{})
		require.ErrorIs(t, err, guwerrors.ErrPush)
		require.Equal(t, with(upstream, "f2", "f3"), s.fake.Patches(s.fake.LocalBranches()["final"]))
		require.Equal(t, before, s.config(t))
		require.Contains(t, s.out.String(), "final is at")

		ws := s.opened[len(s.opened)-1]
		require.True(t, ws.Kept)
		require.True(t, ws.Closed)
		require.Contains(t, s.out.String(), "git -C /tmp/guw-clone push --force-with-lease origin final")
		require.Contains(t, s.out.String(), "--dir /tmp/guw-clone")
	})
}

func TestMarkdownAction(t *testing.T) {
	s := newActionScene(t)

	require.NoError(t, actions.MarkdownAction(s.ctx, actions.MarkdownOptions{Raw: true}))
	require.Equal(t, output.FeatureList(s.config(t)), s.out.String())
	require.Contains(t, s.out.String(), "[(Branch link)](https://github.com/fork/project/tree/feature1)")
}

func TestListAction(t *testing.T) {
	s := newActionScene(t)

	require.NoError(t, actions.ListAction(s.ctx))
	out := s.out.String()
	require.Contains(t, out, "upstream  up/master")
	require.Contains(t, out, "feature2-reviewing")
	require.Contains(t, out, "Add file3.txt")
}

func TestInterruptedRunRollsBack(t *testing.T) {
	s := newActionScene(t)
	s.ctx.Interactive = true
	before := s.config(t)
	locals := s.fake.LocalBranches()

	restore := actions.SetProgressView(func(_ string, _ []string, updates <-chan tui.ProgressUpdate) error {
		<-updates
		return tui.ErrInterrupted
	})
	defer restore()

	// the first rebase only starts once the run was cancelled
	s.fake.BeforeRebase = func(ctx context.Context, _ string) {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}

	err := actions.SyncAction(s.ctx, actions.SyncOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, locals, s.fake.LocalBranches())
	require.Empty(t, s.fake.Pushed)
	require.Equal(t, before, s.config(t))
}
