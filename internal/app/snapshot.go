package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/dbs/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "dbs.snapshot.v1"

// Snapshot is a portable copy of every task in the store.
type Snapshot struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Tasks      []SnapshotTask `json:"tasks"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	Name        string         `json:"name"`
	Project     string         `json:"project"`
	Priority    string         `json:"priority"`
	State       string         `json:"state"`
	Description string         `json:"task"`
	Notes       []SnapshotNote `json:"notes,omitempty"`
}

// SnapshotNote is one note inside a SnapshotTask.
type SnapshotNote struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// ExportSnapshot collects every task in scan order. Malformed records are skipped.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	idx, _, err := s.RebuildIndex(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Tasks:      make([]SnapshotTask, 0, len(idx.Order)),
	}
	for _, name := range idx.Order {
		snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(idx.Tasks[name]))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot writes every snapshot task, replacing tasks that already exist.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()
	for _, st := range snap.Tasks {
		task := st.toDomain()
		if _, err := s.repo.LoadTask(ctx, task.Name); err == nil {
			if err := s.repo.UpdateTask(ctx, task); err != nil {
				return fmt.Errorf("update task %s: %w", task.Name, err)
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateTask(ctx, task); err != nil {
			return fmt.Errorf("create task %s: %w", task.Name, err)
		}
	}
	return nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	seen := map[string]struct{}{}
	for i, st := range s.Tasks {
		if err := st.toDomain().Validate(); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if _, ok := seen[st.Name]; ok {
			return fmt.Errorf("duplicate task name: %q", st.Name)
		}
		seen[st.Name] = struct{}{}
	}
	return nil
}

// sort orders tasks by name for stable output.
func (s *Snapshot) sort() {
	slices.SortFunc(s.Tasks, func(a, b SnapshotTask) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// snapshotTaskFromDomain handles snapshot task from domain.
func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	out := SnapshotTask{
		Name:        t.Name,
		Project:     t.Project,
		Priority:    string(t.Priority),
		State:       string(t.State),
		Description: t.Description,
	}
	for _, n := range t.Notes {
		out.Notes = append(out.Notes, SnapshotNote{At: n.CreatedAt, Text: n.Text})
	}
	return out
}

// toDomain converts domain.
func (t SnapshotTask) toDomain() domain.Task {
	out := domain.Task{
		Name:        strings.TrimSpace(t.Name),
		Project:     strings.TrimSpace(t.Project),
		Priority:    domain.Priority(strings.TrimSpace(t.Priority)),
		State:       domain.State(strings.TrimSpace(t.State)),
		Description: strings.TrimSpace(t.Description),
	}
	for _, n := range t.Notes {
		out.Notes = append(out.Notes, domain.Note{Text: n.Text, CreatedAt: n.At.UTC()})
	}
	return out
}
