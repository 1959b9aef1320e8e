// Package status defines the review status of a feature, its rank ordering
// and the legal transitions between statuses.
package status

import (
	"fmt"
	"strings"

	guwerrors "guw.dev/guw/internal/errors"
)

// Status is the review state of a feature branch
type Status int

const (
	// Pending features are local work not yet proposed upstream
	Pending Status = iota
	// Merging features have a reviewing branch under external review
	Merging
	// Integrated features are already part of the source branch
	Integrated
)

// All lists every status in rank order
var All = []Status{Integrated, Merging, Pending}

// Initial is the status of a newly added feature
const Initial = Pending

var names = map[Status]string{
	Integrated: "integrated",
	Merging:    "merging",
	Pending:    "pending",
}

// Rank orders statuses along a chain: integrated=0 < merging=1 < pending=2.
// Ranks must be non-decreasing from the first to the last feature.
func (s Status) Rank() int {
	switch s {
	case Integrated:
		return 0
	case Merging:
		return 1
	default:
		return 2
	}
}

// IsTerminal reports whether no transition leaves this status
func (s Status) IsTerminal() bool {
	return s == Integrated
}

// Valid reports whether s is one of the declared statuses
func (s Status) Valid() bool {
	_, ok := names[s]
	return ok
}

func (s Status) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Parse converts a config string into a Status
func Parse(value string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for s, name := range names {
		if name == v {
			return s, nil
		}
	}
	return Pending, guwerrors.NewValidationError("status", "unknown status %q (expected pending, merging or integrated)", value)
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
