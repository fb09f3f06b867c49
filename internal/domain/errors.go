package domain

import "errors"

var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidProject     = errors.New("invalid project")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidNote        = errors.New("invalid note")
	ErrPriorityAtLimit    = errors.New("priority already at limit")
	ErrStateUnchanged     = errors.New("state unchanged")
)
