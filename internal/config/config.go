package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/status"
)

// DefaultPath is the config file used when --config is not given
const DefaultPath = "guw.toml"

// ReviewingSuffix is appended to a feature name to get its reviewing branch
const ReviewingSuffix = "-reviewing"

// Remote is a named git remote
type Remote struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// BranchRef points at a branch on a remote
type BranchRef struct {
	Remote string `toml:"remote"`
	Branch string `toml:"branch"`
}

// Ref returns the remote-tracking ref name, e.g. origin/main
func (r BranchRef) Ref() string {
	return r.Remote + "/" + r.Branch
}

func (r BranchRef) String() string {
	return r.Ref()
}

// Feature is one link of the feature chain
type Feature struct {
	Remote  string        `toml:"remote"`
	Name    string        `toml:"name"`
	PR      string        `toml:"pr,omitempty"`
	Summary string        `toml:"summary,omitempty"`
	Status  status.Status `toml:"status"`
}

// ReviewingBranch is the branch under external review while the feature is merging
func (f Feature) ReviewingBranch() string {
	return f.Name + ReviewingSuffix
}

// ActiveBranch is the branch folded into the chain for this feature
func (f Feature) ActiveBranch() string {
	if f.Status == status.Merging {
		return f.ReviewingBranch()
	}
	return f.Name
}

// Ref returns the remote-tracking ref of the feature branch
func (f Feature) Ref() string {
	return BranchRef{Remote: f.Remote, Branch: f.Name}.Ref()
}

// ActiveRef returns the remote-tracking ref of the active branch
func (f Feature) ActiveRef() string {
	return BranchRef{Remote: f.Remote, Branch: f.ActiveBranch()}.Ref()
}

// Config is the declarative description of the fork
type Config struct {
	Remotes  []Remote   `toml:"remotes"`
	Target   BranchRef  `toml:"target"`
	Source   BranchRef  `toml:"source"`
	Upstream *BranchRef `toml:"upstream,omitempty"`
	Features []Feature  `toml:"features"`
}

// Load reads and decodes a config file. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML config data. Every feature must carry a status.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, guwerrors.NewValidationError("", "cannot parse config: %v", err)
	}

	// the zero Status is pending, so a missing key is only visible undecoded
	var raw struct {
		Features []struct {
			Name   string  `toml:"name"`
			Status *string `toml:"status"`
		} `toml:"features"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, guwerrors.NewValidationError("", "cannot parse config: %v", err)
	}
	verr := &guwerrors.ValidationError{}
	for i, f := range raw.Features {
		if f.Status == nil {
			verr.Add(fmt.Sprintf("features[%d]", i), "feature %q has no status", f.Name)
		}
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes the config as TOML
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Save writes the config to path, replacing the previous file atomically
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".guw-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Clone returns a deep copy so commands can mutate without touching the loaded config
func (c *Config) Clone() *Config {
	out := &Config{
		Remotes:  append([]Remote(nil), c.Remotes...),
		Target:   c.Target,
		Source:   c.Source,
		Features: append([]Feature(nil), c.Features...),
	}
	if c.Upstream != nil {
		up := *c.Upstream
		out.Upstream = &up
	}
	return out
}

// Remote looks up a remote by name
func (c *Config) Remote(name string) (Remote, bool) {
	for _, r := range c.Remotes {
		if r.Name == name {
			return r, true
		}
	}
	return Remote{}, false
}

// UpstreamOrSource returns upstream when declared, source otherwise
func (c *Config) UpstreamOrSource() BranchRef {
	if c.Upstream != nil {
		return *c.Upstream
	}
	return c.Source
}

// Find returns the index and a pointer to the named feature, or -1 and nil
func (c *Config) Find(name string) (int, *Feature) {
	for i := range c.Features {
		if c.Features[i].Name == name {
			return i, &c.Features[i]
		}
	}
	return -1, nil
}

// Merging returns the feature currently under review, if any
func (c *Config) Merging() *Feature {
	for i := range c.Features {
		if c.Features[i].Status == status.Merging {
			return &c.Features[i]
		}
	}
	return nil
}
