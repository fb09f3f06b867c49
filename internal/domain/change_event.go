package domain

import "time"

// ChangeOperation describes a journaled task mutation.
type ChangeOperation string

// ChangeOperation values written to the local journal.
const (
	ChangeOperationCreate    ChangeOperation = "create"
	ChangeOperationNote      ChangeOperation = "note"
	ChangeOperationState     ChangeOperation = "state"
	ChangeOperationPriority  ChangeOperation = "priority"
	ChangeOperationDuplicate ChangeOperation = "duplicate"
)

// ChangeEvent represents a single journal entry for one task.
type ChangeEvent struct {
	ID         string
	TaskName   string
	Project    string
	Operation  ChangeOperation
	Detail     string
	OccurredAt time.Time
}
