package domain

import (
	"slices"
	"strings"
)

// State is a task's lifecycle disposition. Each state is a partition of the store.
type State string

const (
	StateOpen    State = "open"
	StateActive  State = "active"
	StateDone    State = "done"
	StateDeleted State = "deleted"
)

// stateOrder is the scan order used whenever every partition is visited.
var stateOrder = []State{StateOpen, StateActive, StateDone, StateDeleted}

// States returns all lifecycle states in scan order.
func States() []State {
	return slices.Clone(stateOrder)
}

// ParseState parses a lifecycle state name.
func ParseState(raw string) (State, error) {
	s := State(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidState
	}
	return s, nil
}

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	return slices.Contains(stateOrder, s)
}

// Workable reports whether tasks in this state still need attention.
func (s State) Workable() bool {
	return s == StateOpen || s == StateActive
}

// Letter returns the single-character code used in the all-tasks listing.
func (s State) Letter() string {
	if s == StateDeleted {
		return "D"
	}
	if s == "" {
		return ""
	}
	return string(s)[:1]
}
