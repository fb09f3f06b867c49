package app

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/dbs/internal/domain"
)

type fakeRepo struct {
	tasks    map[string]domain.Task
	order    []string
	issues   map[domain.State][]ScanIssue
	writeErr error
}

func newFakeRepo(tasks ...domain.Task) *fakeRepo {
	f := &fakeRepo{
		tasks:  map[string]domain.Task{},
		issues: map[domain.State][]ScanIssue{},
	}
	for _, t := range tasks {
		f.tasks[t.Name] = t
		f.order = append(f.order, t.Name)
	}
	return f
}

func (f *fakeRepo) EnumerateTasks(_ context.Context, state domain.State) ([]domain.Task, []ScanIssue, error) {
	out := make([]domain.Task, 0)
	for _, name := range f.order {
		if t := f.tasks[name]; t.State == state {
			out = append(out, t.Clone())
		}
	}
	return out, f.issues[state], nil
}

func (f *fakeRepo) LoadTask(_ context.Context, name string) (domain.Task, error) {
	t, ok := f.tasks[name]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.tasks[t.Name]; ok {
		return ErrAlreadyExists
	}
	f.tasks[t.Name] = t.Clone()
	f.order = append(f.order, t.Name)
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.tasks[t.Name]; !ok {
		return ErrNotFound
	}
	f.tasks[t.Name] = t.Clone()
	return nil
}

type fakeJournal struct {
	events []domain.ChangeEvent
	err    error
}

func (f *fakeJournal) RecordChange(_ context.Context, e domain.ChangeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeJournal) ListChangesSince(_ context.Context, since time.Time, _ int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0)
	for i := len(f.events) - 1; i >= 0; i-- {
		if !f.events[i].OccurredAt.Before(since) {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func mustTask(t *testing.T, name, project string, p domain.Priority, s domain.State) domain.Task {
	t.Helper()
	task, err := domain.NewTask(domain.TaskInput{Name: name, Project: project, Priority: p, Description: "task " + name, State: s}, time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	return task
}

func newTestService(repo *fakeRepo, journal Journal) *Service {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return NewService(repo, journal, func() string {
		n++
		return "ev-" + strings.Repeat("x", n)
	}, func() time.Time { return now }, ServiceConfig{})
}

func TestAddTaskAllocatesNextName(t *testing.T) {
	repo := newFakeRepo(
		mustTask(t, "9", "alpha", domain.PriorityLow, domain.StateOpen),
		mustTask(t, "12", "alpha", domain.PriorityLow, domain.StateDone),
		mustTask(t, "misc", "alpha", domain.PriorityLow, domain.StateOpen),
	)
	journal := &fakeJournal{}
	svc := newTestService(repo, journal)

	task, err := svc.AddTask(context.Background(), AddTaskInput{Name: "next", Project: "alpha", Priority: domain.PriorityHigh, Description: "write docs"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.Name != "13" {
		t.Fatalf("expected name 13, got %q", task.Name)
	}
	if len(journal.events) != 1 || journal.events[0].Operation != domain.ChangeOperationCreate {
		t.Fatalf("expected create event, got %#v", journal.events)
	}

	if _, err := svc.AddTask(context.Background(), AddTaskInput{Name: "13", Project: "alpha", Priority: domain.PriorityHigh, Description: "dup"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogTaskCreatesDoneTask(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	task, err := svc.LogTask(context.Background(), AddTaskInput{Name: "1", Project: "ops", Priority: domain.PriorityMedium, Description: "rotated keys"})
	if err != nil {
		t.Fatalf("LogTask() error = %v", err)
	}
	if task.State != domain.StateDone {
		t.Fatalf("expected done state, got %q", task.State)
	}
	if got := task.Notes[len(task.Notes)-1].Text; got != "marked done" {
		t.Fatalf("unexpected last note %q", got)
	}
}

func TestAppendNoteAndStateChanges(t *testing.T) {
	repo := newFakeRepo(mustTask(t, "1", "alpha", domain.PriorityMedium, domain.StateOpen))
	journal := &fakeJournal{}
	svc := newTestService(repo, journal)
	ctx := context.Background()

	task, err := svc.AppendNote(ctx, "1", "called vendor")
	if err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}
	if task.NoteCount() != 2 {
		t.Fatalf("expected 2 notes, got %d", task.NoteCount())
	}
	if _, err := svc.AppendNote(ctx, "1", "   "); !errors.Is(err, domain.ErrInvalidNote) {
		t.Fatalf("expected ErrInvalidNote, got %v", err)
	}

	task, err = svc.ToggleActive(ctx, "1")
	if err != nil || task.State != domain.StateActive {
		t.Fatalf("ToggleActive() = %q, %v", task.State, err)
	}
	task, err = svc.ToggleActive(ctx, "1")
	if err != nil || task.State != domain.StateOpen {
		t.Fatalf("ToggleActive() = %q, %v", task.State, err)
	}
	if _, err := svc.ChangeState(ctx, "1", domain.StateDone); err != nil {
		t.Fatalf("ChangeState() error = %v", err)
	}
	if _, err := svc.ToggleActive(ctx, "1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState toggling done task, got %v", err)
	}
	if _, err := svc.ChangeState(ctx, "missing", domain.StateDone); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ops := make([]domain.ChangeOperation, 0, len(journal.events))
	for _, e := range journal.events {
		ops = append(ops, e.Operation)
	}
	want := []domain.ChangeOperation{domain.ChangeOperationNote, domain.ChangeOperationState, domain.ChangeOperationState, domain.ChangeOperationState}
	if !slices.Equal(ops, want) {
		t.Fatalf("unexpected journal ops %#v", ops)
	}
}

func TestPriorityStepping(t *testing.T) {
	repo := newFakeRepo(mustTask(t, "1", "alpha", domain.PriorityMedium, domain.StateOpen))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	task, err := svc.RaisePriority(ctx, "1")
	if err != nil || task.Priority != domain.PriorityHigh {
		t.Fatalf("RaisePriority() = %q, %v", task.Priority, err)
	}
	if _, err := svc.RaisePriority(ctx, "1"); !errors.Is(err, domain.ErrPriorityAtLimit) {
		t.Fatalf("expected ErrPriorityAtLimit, got %v", err)
	}
	task, err = svc.LowerPriority(ctx, "1")
	if err != nil || task.Priority != domain.PriorityMedium {
		t.Fatalf("LowerPriority() = %q, %v", task.Priority, err)
	}
	if got := repo.tasks["1"].Notes[len(repo.tasks["1"].Notes)-1].Text; got != "downed priority" {
		t.Fatalf("unexpected persisted note %q", got)
	}
}

func TestDuplicateTask(t *testing.T) {
	repo := newFakeRepo(mustTask(t, "4", "alpha", domain.PriorityHigh, domain.StateDone))
	svc := newTestService(repo, nil)
	task, err := svc.DuplicateTask(context.Background(), "4", "next")
	if err != nil {
		t.Fatalf("DuplicateTask() error = %v", err)
	}
	if task.Name != "5" || task.Project != "alpha" || task.Priority != domain.PriorityHigh || task.State != domain.StateOpen {
		t.Fatalf("unexpected duplicate %#v", task)
	}
	if got := task.Notes[len(task.Notes)-1].Text; got != "duplicate of 4" {
		t.Fatalf("unexpected note %q", got)
	}
}

func TestJournalFailureDoesNotFailWrite(t *testing.T) {
	repo := newFakeRepo(mustTask(t, "1", "alpha", domain.PriorityLow, domain.StateOpen))
	var warned []string
	svc := NewService(repo, &fakeJournal{err: errors.New("disk full")}, nil, nil, ServiceConfig{
		Warn: func(msg string, _ ...any) { warned = append(warned, msg) },
	})
	if _, err := svc.AppendNote(context.Background(), "1", "still saved"); err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}
	if repo.tasks["1"].NoteCount() != 2 {
		t.Fatalf("expected note persisted despite journal failure")
	}
	if len(warned) != 1 {
		t.Fatalf("expected one warning, got %#v", warned)
	}
}

func TestWriteFailureLeavesStoreUnchanged(t *testing.T) {
	repo := newFakeRepo(mustTask(t, "1", "alpha", domain.PriorityLow, domain.StateOpen))
	repo.writeErr = errors.New("read-only file system")
	svc := newTestService(repo, nil)
	if _, err := svc.ChangeState(context.Background(), "1", domain.StateDone); err == nil {
		t.Fatal("expected write error")
	}
	if repo.tasks["1"].State != domain.StateOpen {
		t.Fatalf("expected state unchanged, got %q", repo.tasks["1"].State)
	}
}

func TestRecap(t *testing.T) {
	journal := &fakeJournal{}
	repo := newFakeRepo()
	svc := newTestService(repo, journal)
	ctx := context.Background()
	if _, err := svc.AddTask(ctx, AddTaskInput{Name: "1", Project: "alpha", Priority: domain.PriorityLow, Description: "x"}); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	journal.events = append(journal.events, domain.ChangeEvent{TaskName: "old", OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})

	events, err := svc.Recap(ctx, 7)
	if err != nil {
		t.Fatalf("Recap() error = %v", err)
	}
	if len(events) != 1 || events[0].TaskName != "1" {
		t.Fatalf("unexpected recap %#v", events)
	}
	if _, err := svc.Recap(ctx, 400); !errors.Is(err, ErrRecapTooLong) {
		t.Fatalf("expected ErrRecapTooLong, got %v", err)
	}
	if _, err := newTestService(repo, nil).Recap(ctx, 1); !errors.Is(err, ErrJournalUnavailable) {
		t.Fatalf("expected ErrJournalUnavailable, got %v", err)
	}
}

func TestRebuildIndexReportsScanIssues(t *testing.T) {
	repo := newFakeRepo(mustTask(t, "1", "alpha", domain.PriorityLow, domain.StateOpen))
	repo.issues[domain.StateDone] = []ScanIssue{{Key: "done/bad", Err: domain.ErrInvalidPriority}}
	var warned int
	svc := NewService(repo, nil, nil, nil, ServiceConfig{Warn: func(string, ...any) { warned++ }})
	idx, issues, err := svc.RebuildIndex(context.Background())
	if err != nil {
		t.Fatalf("RebuildIndex() error = %v", err)
	}
	if len(idx.Tasks) != 1 || len(issues) != 1 || warned != 1 {
		t.Fatalf("unexpected rebuild result tasks=%d issues=%d warned=%d", len(idx.Tasks), len(issues), warned)
	}
}
