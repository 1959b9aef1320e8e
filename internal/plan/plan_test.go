package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/status"
)

func newConfig(features ...config.Feature) *config.Config {
	return &config.Config{
		Remotes:  []config.Remote{{Name: "origin", URL: "file:///origin"}, {Name: "up", URL: "file:///up"}},
		Source:   config.BranchRef{Remote: "origin", Branch: "main"},
		Target:   config.BranchRef{Remote: "origin", Branch: "final"},
		Features: features,
	}
}

func feature(name string, s status.Status) config.Feature {
	return config.Feature{Remote: "origin", Name: name, Status: s}
}

func TestBuildExample(t *testing.T) {
	cfg := newConfig(
		feature("feature1", status.Integrated),
		feature("feature2", status.Merging),
		feature("feature3", status.Pending),
	)
	require.NoError(t, cfg.Validate())

	p := plan.Build(cfg, plan.ModeSync, plan.Options{})
	require.Equal(t, "origin/main", p.Base)
	require.Equal(t, []plan.Step{
		{
			Action:   plan.ActionRebase,
			Feature:  "feature2",
			Remote:   "origin",
			Branch:   "feature2-reviewing",
			Start:    "origin/feature2-reviewing",
			Fallback: "origin/feature2",
			Onto:     "origin/main",
			From:     "origin/feature1",
		},
		{
			Action:       plan.ActionRebase,
			Feature:      "feature3",
			Remote:       "origin",
			Branch:       "feature3",
			Start:        "origin/feature3",
			Onto:         "feature2-reviewing",
			From:         "origin/feature2-reviewing",
			FromFallback: "origin/feature2",
		},
		{
			Action: plan.ActionMove,
			Remote: "origin",
			Branch: "final",
			Start:  "origin/final",
			Onto:   "feature3",
		},
	}, p.Steps)
	require.Equal(t, "feature3", p.Head())
	require.Equal(t, []string{"feature2-reviewing", "feature3", "final"}, p.Branches())
}

func TestBuildSkipsIntegrated(t *testing.T) {
	statuses := [][]status.Status{
		{status.Integrated, status.Integrated},
		{status.Integrated, status.Pending, status.Pending},
		{status.Merging, status.Pending, status.Pending, status.Pending},
		{status.Integrated, status.Integrated, status.Merging},
	}
	for _, seq := range statuses {
		var features []config.Feature
		var want []string
		for i, s := range seq {
			f := feature(string(rune('a'+i)), s)
			features = append(features, f)
			if s != status.Integrated {
				want = append(want, f.Name)
			}
		}
		cfg := newConfig(features...)
		require.NoError(t, cfg.Validate())

		p := plan.Build(cfg, plan.ModeContinue, plan.Options{})
		var got []string
		for _, step := range p.Rebases() {
			got = append(got, step.Feature)
		}
		require.Equal(t, want, got, "%v", seq)
	}
}

func TestBuildSubstitution(t *testing.T) {
	cfg := newConfig(feature("f1", status.Merging), feature("f2", status.Pending))
	p := plan.Build(cfg, plan.ModeContinue, plan.Options{})

	rebases := p.Rebases()
	require.Len(t, rebases, 2)
	require.Equal(t, "f1-reviewing", rebases[0].Branch)
	require.NotEqual(t, "f1", rebases[0].Branch)
	require.Equal(t, "f1-reviewing", rebases[1].Onto)
}

func TestBuildEmptyFeatureList(t *testing.T) {
	cfg := newConfig()

	p := plan.Build(cfg, plan.ModeContinue, plan.Options{})
	require.Len(t, p.Steps, 1)
	require.Equal(t, plan.ActionMove, p.Steps[0].Action)
	require.Equal(t, "final", p.Steps[0].Branch)
	require.Equal(t, "origin/main", p.Steps[0].Onto)
}

func TestBuildModes(t *testing.T) {
	cfg := newConfig(feature("f1", status.Pending))
	cfg.Upstream = &config.BranchRef{Remote: "up", Branch: "master"}
	require.NoError(t, cfg.Validate())

	t.Run("sync rebuilds on upstream and moves source", func(t *testing.T) {
		p := plan.Build(cfg, plan.ModeSync, plan.Options{})
		require.Equal(t, "up/master", p.Base)
		require.Len(t, p.Steps, 3)
		require.Equal(t, plan.Step{
			Action: plan.ActionMove,
			Remote: "origin",
			Branch: "main",
			Start:  "origin/main",
			Onto:   "up/master",
		}, p.Steps[0])
		require.Equal(t, "up/master", p.Steps[1].Onto)
		require.Equal(t, "origin/main", p.Steps[1].From)
	})

	t.Run("continue stays on source", func(t *testing.T) {
		p := plan.Build(cfg, plan.ModeContinue, plan.Options{})
		require.Equal(t, "origin/main", p.Base)
		require.Len(t, p.Steps, 2)
		require.Equal(t, "origin/main", p.Steps[0].Onto)
	})
}

func TestBuildOverrides(t *testing.T) {
	cfg := newConfig(feature("f1", status.Pending), feature("f3", status.Pending))

	p := plan.Build(cfg, plan.ModeContinue, plan.Options{
		Starts: map[string]string{"f1": "origin/f1-update"},
		Froms:  map[string]string{"f3": "origin/f2"},
	})
	rebases := p.Rebases()
	require.Equal(t, "origin/f1-update", rebases[0].Start)
	require.Equal(t, "origin/main", rebases[0].From)
	require.Equal(t, "origin/f2", rebases[1].From)
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := newConfig(
		feature("feature1", status.Integrated),
		feature("feature2", status.Merging),
		feature("feature3", status.Pending),
	)
	first := plan.Build(cfg, plan.ModeSync, plan.Options{})
	second := plan.Build(cfg, plan.ModeSync, plan.Options{})
	require.Equal(t, first, second)
	require.Equal(t, first.String(), second.String())
	require.Contains(t, first.String(), "rebase feature2-reviewing (origin/feature1..origin/feature2-reviewing) onto origin/main")
}

func TestPinnedFroms(t *testing.T) {
	cfg := newConfig(
		feature("feature1", status.Integrated),
		feature("feature2", status.Merging),
		feature("feature3", status.Pending),
	)
	pinned := plan.PinnedFroms(cfg)
	require.Equal(t, map[string]string{
		"feature2": "origin/feature1",
		"feature3": "origin/feature2-reviewing",
	}, pinned.Froms)
	require.Equal(t, map[string]string{"feature3": "origin/feature2"}, pinned.FromFallbacks)

	t.Run("removed feature stays the fork point of its successor", func(t *testing.T) {
		next := cfg.Clone()
		_, err := next.Remove("feature2", true)
		require.NoError(t, err)

		rebases := plan.Build(next, plan.ModeContinue, pinned).Rebases()
		require.Len(t, rebases, 1)
		require.Equal(t, "origin/main", rebases[0].Onto)
		require.Equal(t, "origin/feature2-reviewing", rebases[0].From)
		require.Equal(t, "origin/feature2", rebases[0].FromFallback)
	})

	t.Run("inserted feature sits on its predecessor", func(t *testing.T) {
		next := cfg.Clone()
		require.NoError(t, next.Add(config.Feature{Remote: "origin", Name: "between"}, "feature2"))

		rebases := plan.Build(next, plan.ModeContinue, pinned).Rebases()
		require.Len(t, rebases, 3)
		require.Equal(t, "between", rebases[1].Feature)
		require.Equal(t, "origin/feature2-reviewing", rebases[1].From)
		require.Equal(t, "feature3", rebases[2].Feature)
		require.Equal(t, "between", rebases[2].Onto)
		require.Equal(t, "origin/feature2-reviewing", rebases[2].From)
	})
}
