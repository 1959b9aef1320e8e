package status

import (
	guwerrors "guw.dev/guw/internal/errors"
)

// Transition is a legal status change
type Transition struct {
	From Status
	To   Status
}

// AllTransitions returns the transition table
func AllTransitions() []Transition {
	return []Transition{
		{From: Pending, To: Merging},
		{From: Merging, To: Integrated},
		// trivial fixes can be integrated without a review branch
		{From: Pending, To: Integrated},
	}
}

// Machine validates status transitions
type Machine struct {
	transitions map[Status]map[Status]bool
}

// NewMachine creates a Machine loaded with AllTransitions
func NewMachine() *Machine {
	m := &Machine{transitions: make(map[Status]map[Status]bool)}
	for _, t := range AllTransitions() {
		if m.transitions[t.From] == nil {
			m.transitions[t.From] = make(map[Status]bool)
		}
		m.transitions[t.From][t.To] = true
	}
	return m
}

// DefaultMachine is shared by the config model
var DefaultMachine = NewMachine()

// CanTransition reports whether from -> to is allowed. Staying in the same
// status is always allowed.
func (m *Machine) CanTransition(from, to Status) bool {
	if from == to {
		return from.Valid()
	}
	return m.transitions[from][to]
}

// Transition validates moving a feature from one status to another
func (m *Machine) Transition(feature string, from, to Status) error {
	if !m.CanTransition(from, to) {
		return guwerrors.NewInvalidTransitionError(feature, from.String(), to.String())
	}
	return nil
}

// Allowed returns the statuses reachable from a status, in rank order
func (m *Machine) Allowed(from Status) []Status {
	var allowed []Status
	for _, s := range All {
		if s != from && m.transitions[from][s] {
			allowed = append(allowed, s)
		}
	}
	return allowed
}
