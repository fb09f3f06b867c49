package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/dbs/internal/domain"
)

// NextNameAlias asks AddTask and DuplicateTask to allocate the next numeric name.
const NextNameAlias = "next"

// maxRecapDays bounds the recap window.
const maxRecapDays = 365

// WarnFunc receives non-fatal problems such as journal write failures.
type WarnFunc func(msg string, keyvals ...any)

// IDGenerator returns unique identifiers for journal events.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	Warn WarnFunc
}

// Service coordinates task store writes, journal entries and index rebuilds.
type Service struct {
	repo    Repository
	journal Journal
	idGen   IDGenerator
	clock   Clock
	warn    WarnFunc
}

// NewService constructs a new value for this package. journal may be nil.
func NewService(repo Repository, journal Journal, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Warn == nil {
		cfg.Warn = func(string, ...any) {}
	}
	return &Service{
		repo:    repo,
		journal: journal,
		idGen:   idGen,
		clock:   clock,
		warn:    cfg.Warn,
	}
}

// ListTasks enumerates every partition in scan order.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, []ScanIssue, error) {
	var (
		all    []domain.Task
		issues []ScanIssue
	)
	for _, state := range domain.States() {
		tasks, stateIssues, err := s.repo.EnumerateTasks(ctx, state)
		if err != nil {
			return nil, nil, fmt.Errorf("enumerate %s tasks: %w", state, err)
		}
		all = append(all, tasks...)
		issues = append(issues, stateIssues...)
	}
	return all, issues, nil
}

// RebuildIndex scans the store and builds a fresh index.
func (s *Service) RebuildIndex(ctx context.Context) (Index, []ScanIssue, error) {
	tasks, issues, err := s.ListTasks(ctx)
	if err != nil {
		return Index{}, nil, err
	}
	for _, issue := range issues {
		s.warn("skipped malformed task record", "key", issue.Key, "err", issue.Err)
	}
	return BuildIndex(tasks), issues, nil
}

// GetTask loads one task by name.
func (s *Service) GetTask(ctx context.Context, name string) (domain.Task, error) {
	return s.repo.LoadTask(ctx, strings.TrimSpace(name))
}

// AddTaskInput holds input values for add task operations.
type AddTaskInput struct {
	Name        string
	Project     string
	Priority    domain.Priority
	Description string
}

// AddTask creates an open task.
func (s *Service) AddTask(ctx context.Context, in AddTaskInput) (domain.Task, error) {
	return s.createTask(ctx, in, domain.StateOpen)
}

// LogTask records work that is already finished.
func (s *Service) LogTask(ctx context.Context, in AddTaskInput) (domain.Task, error) {
	return s.createTask(ctx, in, domain.StateDone)
}

func (s *Service) createTask(ctx context.Context, in AddTaskInput, state domain.State) (domain.Task, error) {
	name, err := s.resolveName(ctx, in.Name)
	if err != nil {
		return domain.Task{}, err
	}
	now := s.clock()
	task, err := domain.NewTask(domain.TaskInput{
		Name:        name,
		Project:     in.Project,
		Priority:    in.Priority,
		Description: in.Description,
	}, now)
	if err != nil {
		return domain.Task{}, err
	}
	if state != domain.StateOpen {
		if err := task.SetState(state, now); err != nil {
			return domain.Task{}, err
		}
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	s.record(ctx, task, domain.ChangeOperationCreate, string(task.State))
	return task, nil
}

// AppendNote adds a note to a task.
func (s *Service) AppendNote(ctx context.Context, name, text string) (domain.Task, error) {
	task, err := s.repo.LoadTask(ctx, name)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.AddNote(text, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	s.record(ctx, task, domain.ChangeOperationNote, task.Notes[len(task.Notes)-1].Text)
	return task, nil
}

// ChangeState moves a task to another lifecycle partition.
func (s *Service) ChangeState(ctx context.Context, name string, state domain.State) (domain.Task, error) {
	task, err := s.repo.LoadTask(ctx, name)
	if err != nil {
		return domain.Task{}, err
	}
	prev := task.State
	if err := task.SetState(state, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	s.record(ctx, task, domain.ChangeOperationState, string(prev)+" -> "+string(state))
	return task, nil
}

// ToggleActive flips a task between open and active.
func (s *Service) ToggleActive(ctx context.Context, name string) (domain.Task, error) {
	task, err := s.repo.LoadTask(ctx, name)
	if err != nil {
		return domain.Task{}, err
	}
	switch task.State {
	case domain.StateOpen:
		return s.ChangeState(ctx, name, domain.StateActive)
	case domain.StateActive:
		return s.ChangeState(ctx, name, domain.StateOpen)
	default:
		return domain.Task{}, fmt.Errorf("task %s is %s: %w", name, task.State, domain.ErrInvalidState)
	}
}

// ChangePriority sets a task's priority.
func (s *Service) ChangePriority(ctx context.Context, name string, priority domain.Priority) (domain.Task, error) {
	task, err := s.repo.LoadTask(ctx, name)
	if err != nil {
		return domain.Task{}, err
	}
	prev := task.Priority
	if err := task.SetPriority(priority, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if prev == priority {
		return task, nil
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	s.record(ctx, task, domain.ChangeOperationPriority, string(prev)+" -> "+string(priority))
	return task, nil
}

// RaisePriority moves a task one priority step up.
func (s *Service) RaisePriority(ctx context.Context, name string) (domain.Task, error) {
	return s.stepPriority(ctx, name, domain.Priority.Raise)
}

// LowerPriority moves a task one priority step down.
func (s *Service) LowerPriority(ctx context.Context, name string) (domain.Task, error) {
	return s.stepPriority(ctx, name, domain.Priority.Lower)
}

func (s *Service) stepPriority(ctx context.Context, name string, step func(domain.Priority) (domain.Priority, error)) (domain.Task, error) {
	task, err := s.repo.LoadTask(ctx, name)
	if err != nil {
		return domain.Task{}, err
	}
	next, err := step(task.Priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", name, err)
	}
	return s.ChangePriority(ctx, name, next)
}

// DuplicateTask copies a task's project, priority and description under a new name.
func (s *Service) DuplicateTask(ctx context.Context, source, name string) (domain.Task, error) {
	src, err := s.repo.LoadTask(ctx, source)
	if err != nil {
		return domain.Task{}, err
	}
	name, err = s.resolveName(ctx, name)
	if err != nil {
		return domain.Task{}, err
	}
	now := s.clock()
	task, err := domain.NewTask(domain.TaskInput{
		Name:        name,
		Project:     src.Project,
		Priority:    src.Priority,
		Description: src.Description,
	}, now)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.AddNote("duplicate of "+src.Name, now); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	s.record(ctx, task, domain.ChangeOperationDuplicate, src.Name)
	return task, nil
}

// NextName returns one more than the largest numeric task name in the store.
func (s *Service) NextName(ctx context.Context) (string, error) {
	tasks, _, err := s.ListTasks(ctx)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, t := range tasks {
		n, err := strconv.Atoi(t.Name)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return strconv.Itoa(highest + 1), nil
}

// Recap returns journal entries from the last days days, newest first.
func (s *Service) Recap(ctx context.Context, days int) ([]domain.ChangeEvent, error) {
	if days <= 0 {
		days = 1
	}
	if days > maxRecapDays {
		return nil, ErrRecapTooLong
	}
	if s.journal == nil {
		return nil, ErrJournalUnavailable
	}
	since := s.clock().Add(-time.Duration(days) * 24 * time.Hour)
	return s.journal.ListChangesSince(ctx, since, 0)
}

func (s *Service) resolveName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == NextNameAlias {
		return s.NextName(ctx)
	}
	if _, err := s.repo.LoadTask(ctx, name); err == nil {
		return "", fmt.Errorf("task %s: %w", name, ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return name, nil
}

// record writes a journal entry. Journal failures never undo a store write.
func (s *Service) record(ctx context.Context, task domain.Task, op domain.ChangeOperation, detail string) {
	if s.journal == nil {
		return
	}
	err := s.journal.RecordChange(ctx, domain.ChangeEvent{
		ID:         s.idGen(),
		TaskName:   task.Name,
		Project:    task.Project,
		Operation:  op,
		Detail:     detail,
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.warn("journal write failed", "task", task.Name, "operation", op, "err", err)
	}
}
