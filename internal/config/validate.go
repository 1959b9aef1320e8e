package config

import (
	"fmt"

	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/status"
)

// Validate checks the structural invariants of the config and reports every
// violation found. It never mutates the config.
func (c *Config) Validate() error {
	verr := &guwerrors.ValidationError{}

	remotes := make(map[string]bool, len(c.Remotes))
	for i, r := range c.Remotes {
		field := fmt.Sprintf("remotes[%d]", i)
		if r.Name == "" {
			verr.Add(field, "remote name is empty")
			continue
		}
		if remotes[r.Name] {
			verr.Add(field, "duplicate remote %q", r.Name)
		}
		if r.URL == "" {
			verr.Add(field, "remote %q has no url", r.Name)
		}
		remotes[r.Name] = true
	}

	checkRef := func(field string, ref BranchRef) {
		if ref.Branch == "" {
			verr.Add(field, "branch is empty")
		}
		if !remotes[ref.Remote] {
			verr.Add(field, "unknown remote %q", ref.Remote)
		}
	}
	checkRef("source", c.Source)
	checkRef("target", c.Target)
	if c.Upstream != nil {
		checkRef("upstream", *c.Upstream)
	}
	if c.Source.Branch != "" && c.Source.Branch == c.Target.Branch {
		verr.Add("target", "target branch %q must differ from the source branch", c.Target.Branch)
	}

	names := make(map[string]bool, len(c.Features))
	var merging []string
	var prev *Feature
	for i, f := range c.Features {
		field := fmt.Sprintf("features[%d]", i)
		if reason := CheckBranchName(f.Name); reason != "" {
			verr.Add(field, "feature %q: %s", f.Name, reason)
		} else if names[f.Name] {
			verr.Add(field, "duplicate feature %q", f.Name)
		}
		names[f.Name] = true

		if f.Name != "" && (f.Name == c.Source.Branch || f.Name == c.Target.Branch) {
			verr.Add(field, "feature %q clashes with the source or target branch", f.Name)
		}
		if !remotes[f.Remote] {
			verr.Add(field, "feature %q uses unknown remote %q", f.Name, f.Remote)
		}
		if !f.Status.Valid() {
			verr.Add(field, "feature %q has invalid status %s", f.Name, f.Status)
			continue
		}

		if prev != nil && f.Status.Rank() < prev.Status.Rank() {
			verr.Add(field, "feature %q is %s but follows %s feature %q", f.Name, f.Status, prev.Status, prev.Name)
		}
		prev = &c.Features[i]

		if f.Status == status.Merging {
			merging = append(merging, f.Name)
		}
	}

	if len(merging) > 1 {
		verr.Add("features", "only one feature may be merging, found %d: %v", len(merging), merging)
	}
	for _, name := range merging {
		if names[name+ReviewingSuffix] {
			verr.Add("features", "feature %q clashes with the reviewing branch of %q", name+ReviewingSuffix, name)
		}
	}

	return verr.ErrOrNil()
}

// canPlace reports whether a feature with the given status fits at index i of
// the sequence (before the feature currently at i) without breaking rank order.
func (c *Config) canPlace(i int, s status.Status) bool {
	if i > 0 && c.Features[i-1].Status.Rank() > s.Rank() {
		return false
	}
	if i < len(c.Features) && c.Features[i].Status.Rank() < s.Rank() {
		return false
	}
	return true
}
