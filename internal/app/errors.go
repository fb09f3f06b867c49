package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrRecapTooLong       = errors.New("recap window is limited to 365 days")
	ErrJournalUnavailable = errors.New("change journal unavailable")
)
