package config

import (
	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/status"
)

// EndPosition places a new feature at the end of the chain
const EndPosition = "end"

// FeatureUpdate holds the fields to merge into an existing feature.
// Nil fields are left untouched.
type FeatureUpdate struct {
	Status  *status.Status
	PR      *string
	Summary *string
}

// IsEmpty reports whether the update changes nothing
func (u FeatureUpdate) IsEmpty() bool {
	return u.Status == nil && u.PR == nil && u.Summary == nil
}

// Add inserts a feature after the named feature, or at the end when after is
// empty or EndPosition. The feature must keep the chain's status order.
func (c *Config) Add(feature Feature, after string) error {
	if feature.Name == "" {
		return guwerrors.NewStateError("", "feature name is required")
	}
	if _, existing := c.Find(feature.Name); existing != nil {
		return guwerrors.NewStateError(feature.Name, "already exists")
	}

	pos := len(c.Features)
	if idx, f := c.Find(after); f != nil {
		pos = idx + 1
	} else if after != "" && after != EndPosition {
		return guwerrors.NewStateError(after, "cannot add %s after unknown feature", feature.Name)
	}

	if !c.canPlace(pos, feature.Status) {
		return guwerrors.NewStateError(feature.Name, "a %s feature cannot be placed at position %d without breaking status order", feature.Status, pos+1)
	}

	c.Features = append(c.Features, Feature{})
	copy(c.Features[pos+1:], c.Features[pos:])
	c.Features[pos] = feature

	if err := c.Validate(); err != nil {
		c.Features = append(c.Features[:pos], c.Features[pos+1:]...)
		return err
	}
	return nil
}

// Remove deletes a feature by name. Removing a feature under review requires force.
func (c *Config) Remove(name string, force bool) (Feature, error) {
	idx, f := c.Find(name)
	if f == nil {
		return Feature{}, guwerrors.NewStateError(name, "no such feature")
	}
	if f.Status == status.Merging && !force {
		return Feature{}, guwerrors.NewStateError(name, "is under review (merging); use --force to remove it")
	}
	removed := *f
	c.Features = append(c.Features[:idx], c.Features[idx+1:]...)
	return removed, nil
}

// Update merges the given fields into a feature. Status changes must be legal
// transitions and the resulting config must stay valid.
func (c *Config) Update(name string, update FeatureUpdate) error {
	_, f := c.Find(name)
	if f == nil {
		return guwerrors.NewStateError(name, "no such feature")
	}

	old := *f
	if update.Status != nil {
		if err := status.DefaultMachine.Transition(name, f.Status, *update.Status); err != nil {
			return err
		}
		f.Status = *update.Status
	}
	if update.PR != nil {
		f.PR = *update.PR
	}
	if update.Summary != nil {
		f.Summary = *update.Summary
	}

	if err := c.Validate(); err != nil {
		*f = old
		return err
	}
	return nil
}
