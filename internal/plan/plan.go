// Package plan turns a validated config into the ordered list of rebase and
// ref-move steps that rebuilds the target branch.
package plan

import (
	"fmt"
	"strings"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/status"
)

// Mode selects the base the chain is rebuilt on
type Mode int

const (
	// ModeSync rebuilds the chain on upstream (or source when there is no upstream)
	ModeSync Mode = iota
	// ModeContinue rebuilds the chain on source without pulling upstream changes
	ModeContinue
)

func (m Mode) String() string {
	if m == ModeSync {
		return "sync"
	}
	return "continue"
}

// Action is the kind of a step
type Action int

const (
	// ActionRebase resets a local branch from its remote and rebases it onto the running base
	ActionRebase Action = iota
	// ActionMove points a branch at the running base without rebasing
	ActionMove
)

func (a Action) String() string {
	if a == ActionRebase {
		return "rebase"
	}
	return "move"
}

// Step is one unit of plan execution
type Step struct {
	Action Action
	// Feature is the config feature the step belongs to, empty for source/target moves
	Feature string
	// Remote is where the branch is pushed
	Remote string
	// Branch is the local branch the step rewrites
	Branch string
	// Start is the ref the local branch is reset to before rebasing
	Start string
	// Fallback is used instead of Start when Start does not exist yet
	Fallback string
	// Onto is the running base: the start ref, or the local branch of the previous rebase
	Onto string
	// From is the ref the branch's own commits sit on; From..Start is replayed onto Onto
	From string
	// FromFallback is used instead of From when From does not exist
	FromFallback string
}

func (s Step) String() string {
	switch s.Action {
	case ActionRebase:
		return fmt.Sprintf("rebase %s (%s..%s) onto %s", s.Branch, s.From, s.Start, s.Onto)
	default:
		return fmt.Sprintf("move %s to %s", s.Branch, s.Onto)
	}
}

// Plan is the ordered step list for one run
type Plan struct {
	Mode Mode
	// Base is the resolved starting ref of the chain
	Base string
	// Source is the remote-tracking ref the first feature sits on
	Source string
	// Target is the branch holding all applied features
	Target config.BranchRef
	Steps  []Step
}

// Rebases returns only the rebase steps, in order
func (p *Plan) Rebases() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Action == ActionRebase {
			out = append(out, s)
		}
	}
	return out
}

// Branches returns every local branch the plan writes, in step order
func (p *Plan) Branches() []string {
	seen := make(map[string]bool, len(p.Steps))
	var out []string
	for _, s := range p.Steps {
		if !seen[s.Branch] {
			seen[s.Branch] = true
			out = append(out, s.Branch)
		}
	}
	return out
}

// Head is the ref the target ends up pointing at
func (p *Plan) Head() string {
	if len(p.Steps) == 0 {
		return p.Base
	}
	return p.Steps[len(p.Steps)-1].Onto
}

func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s plan on %s\n", p.Mode, p.Base)
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, s)
	}
	return b.String()
}

// Options tweak how individual features are replayed
type Options struct {
	// Starts overrides the ref a feature's branch is reset to, keyed by feature name
	Starts map[string]string
	// Froms overrides the ref a feature's own commits sit on, keyed by feature name
	Froms map[string]string
	// FromFallbacks is used instead of an overridden From that does not exist
	FromFallbacks map[string]string
}

// PinnedFroms records where every rebased feature's own commits sit in the
// chain built from cfg. Passing the result to Build for an edited chain keeps
// surviving features from replaying commits of features added or removed around them.
func PinnedFroms(cfg *config.Config) Options {
	opts := Options{Froms: map[string]string{}, FromFallbacks: map[string]string{}}
	for _, step := range Build(cfg, ModeContinue, Options{}).Rebases() {
		opts.Froms[step.Feature] = step.From
		if step.FromFallback != "" {
			opts.FromFallbacks[step.Feature] = step.FromFallback
		}
	}
	return opts
}

// Build folds the feature chain into a plan. The config must be valid.
func Build(cfg *config.Config, mode Mode, opts Options) *Plan {
	base := cfg.Source.Ref()
	if mode == ModeSync {
		base = cfg.UpstreamOrSource().Ref()
	}

	p := &Plan{
		Mode:   mode,
		Base:   base,
		Source: cfg.Source.Ref(),
		Target: cfg.Target,
	}

	if mode == ModeSync && base != cfg.Source.Ref() {
		p.Steps = append(p.Steps, Step{
			Action: ActionMove,
			Remote: cfg.Source.Remote,
			Branch: cfg.Source.Branch,
			Start:  cfg.Source.Ref(),
			Onto:   base,
		})
	}

	from, fromFallback := cfg.Source.Ref(), ""
	for _, f := range cfg.Features {
		if override, ok := opts.Froms[f.Name]; ok {
			from, fromFallback = override, opts.FromFallbacks[f.Name]
		}

		step := Step{
			Action:       ActionRebase,
			Feature:      f.Name,
			Remote:       f.Remote,
			Branch:       f.Name,
			Start:        startRef(f, f.Ref(), opts),
			Onto:         base,
			From:         from,
			FromFallback: fromFallback,
		}

		switch f.Status {
		case status.Integrated:
			// commits already in the base; dependents still sit on this branch
			from, fromFallback = f.Ref(), ""
			continue
		case status.Merging:
			step.Branch = f.ReviewingBranch()
			step.Start = startRef(f, f.ActiveRef(), opts)
			step.Fallback = f.Ref()
			// the reviewing branch may not be pushed yet
			from, fromFallback = f.ActiveRef(), f.Ref()
		default:
			from, fromFallback = f.Ref(), ""
		}

		p.Steps = append(p.Steps, step)
		base = step.Branch
	}

	p.Steps = append(p.Steps, Step{
		Action: ActionMove,
		Remote: cfg.Target.Remote,
		Branch: cfg.Target.Branch,
		Start:  cfg.Target.Ref(),
		Onto:   base,
	})

	return p
}

func startRef(f config.Feature, def string, opts Options) string {
	if override, ok := opts.Starts[f.Name]; ok {
		return override
	}
	return def
}
