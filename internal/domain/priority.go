package domain

import (
	"slices"
	"strings"
)

// Priority is the one-letter urgency code stored with every task.
type Priority string

const (
	PriorityHigh   Priority = "h"
	PriorityMedium Priority = "m"
	PriorityLow    Priority = "l"
)

// priorityOrder lists priorities from most to least urgent.
var priorityOrder = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Priorities returns all priorities ordered from high to low.
func Priorities() []Priority {
	return slices.Clone(priorityOrder)
}

// ParsePriority accepts a letter or full word, case-insensitively.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "h", "high":
		return PriorityHigh, nil
	case "m", "medium", "med":
		return PriorityMedium, nil
	case "l", "low":
		return PriorityLow, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return slices.Contains(priorityOrder, p)
}

// Rank returns 0 for high, 1 for medium and 2 for low.
func (p Priority) Rank() int {
	return slices.Index(priorityOrder, p)
}

// Raise returns the next more urgent priority.
func (p Priority) Raise() (Priority, error) {
	idx := p.Rank()
	if idx < 0 {
		return "", ErrInvalidPriority
	}
	if idx == 0 {
		return p, ErrPriorityAtLimit
	}
	return priorityOrder[idx-1], nil
}

// Lower returns the next less urgent priority.
func (p Priority) Lower() (Priority, error) {
	idx := p.Rank()
	if idx < 0 {
		return "", ErrInvalidPriority
	}
	if idx == len(priorityOrder)-1 {
		return p, ErrPriorityAtLimit
	}
	return priorityOrder[idx+1], nil
}

// Label returns the display word for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return string(p)
	}
}
