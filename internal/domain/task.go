package domain

import (
	"strings"
	"time"
	"unicode"
)

// Task is one unit of work. Its name is the identity; everything else is mutable.
type Task struct {
	Name        string
	Project     string
	Priority    Priority
	Description string
	State       State
	Notes       []Note
}

// TaskInput holds the fields required to create a task.
type TaskInput struct {
	Name        string
	Project     string
	Priority    Priority
	Description string
	State       State
}

// NewTask validates input and returns a task with its creation note.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Project = strings.TrimSpace(in.Project)
	in.Description = strings.TrimSpace(in.Description)

	if !ValidName(in.Name) {
		return Task{}, ErrInvalidName
	}
	if in.Project == "" || strings.ContainsAny(in.Project, " \t\n") {
		return Task{}, ErrInvalidProject
	}
	if in.Description == "" {
		return Task{}, ErrInvalidDescription
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}
	if in.State == "" {
		in.State = StateOpen
	}
	if !in.State.Valid() {
		return Task{}, ErrInvalidState
	}

	t := Task{
		Name:        in.Name,
		Project:     in.Project,
		Priority:    in.Priority,
		Description: in.Description,
		State:       in.State,
	}
	if err := t.AddNote("created", now); err != nil {
		return Task{}, err
	}
	return t, nil
}

// ValidName reports whether name is a short alphanumeric token.
func ValidName(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// Validate checks a task loaded from storage without applying defaults.
func (t Task) Validate() error {
	if !ValidName(t.Name) {
		return ErrInvalidName
	}
	if strings.TrimSpace(t.Project) == "" {
		return ErrInvalidProject
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.State.Valid() {
		return ErrInvalidState
	}
	return nil
}

// AddNote appends a note. Notes are never reordered or removed.
func (t *Task) AddNote(text string, now time.Time) error {
	note, err := NewNote(text, now)
	if err != nil {
		return err
	}
	t.Notes = append(t.Notes, note)
	return nil
}

// NoteCount returns the number of notes attached to the task.
func (t Task) NoteCount() int {
	return len(t.Notes)
}

// SetState moves the task to a new lifecycle state and records the move as a note.
func (t *Task) SetState(next State, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidState
	}
	if next == t.State {
		return ErrStateUnchanged
	}
	note := stateChangeNote(t.State, next)
	t.State = next
	return t.AddNote(note, now)
}

// SetPriority changes the priority and records the direction of the change.
func (t *Task) SetPriority(next Priority, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidPriority
	}
	if next == t.Priority {
		return nil
	}
	note := "upped priority"
	if next.Rank() > t.Priority.Rank() {
		note = "downed priority"
	}
	t.Priority = next
	return t.AddNote(note, now)
}

// Clone returns a deep copy safe to mutate without touching the original.
func (t Task) Clone() Task {
	out := t
	out.Notes = append([]Note(nil), t.Notes...)
	return out
}

func stateChangeNote(prev, next State) string {
	switch next {
	case StateActive:
		return "marked active"
	case StateDone:
		return "marked done"
	case StateDeleted:
		return "mark deleted"
	case StateOpen:
		if prev == StateActive {
			return "moved from active back to open"
		}
		return "reopened"
	default:
		return "state changed to " + string(next)
	}
}
