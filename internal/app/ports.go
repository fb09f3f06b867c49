package app

import (
	"context"
	"time"

	"github.com/hylla/dbs/internal/domain"
)

// ScanIssue reports one record the store could not decode during enumeration.
type ScanIssue struct {
	Key string
	Err error
}

// Repository is the task store. Records are partitioned by lifecycle state.
type Repository interface {
	EnumerateTasks(context.Context, domain.State) ([]domain.Task, []ScanIssue, error)
	LoadTask(context.Context, string) (domain.Task, error)
	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
}

// Journal records task mutations for later reporting.
type Journal interface {
	RecordChange(context.Context, domain.ChangeEvent) error
	ListChangesSince(context.Context, time.Time, int) ([]domain.ChangeEvent, error)
}
