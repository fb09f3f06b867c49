package domain

import (
	"strings"
	"time"
)

// Note is a timestamped free-text entry attached to a task.
type Note struct {
	Text      string
	CreatedAt time.Time
}

// NewNote validates and normalizes a note body.
func NewNote(text string, now time.Time) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "\n\r") {
		return Note{}, ErrInvalidNote
	}
	return Note{
		Text:      text,
		CreatedAt: now.UTC().Truncate(time.Second),
	}, nil
}
