package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/dbs/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Journal stores task change events in a local sqlite database.
type Journal struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	j := &Journal{db: db}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Journal, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)
	j := &Journal{db: db}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the requested operation.
func (j *Journal) Close() error {
	return j.db.Close()
}

// migrate handles migrate.
func (j *Journal) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS change_events (
			id TEXT PRIMARY KEY,
			task_name TEXT NOT NULL,
			project TEXT NOT NULL,
			operation TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_created_at ON change_events(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_task ON change_events(task_name, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// RecordChange inserts one change event.
func (j *Journal) RecordChange(ctx context.Context, event domain.ChangeEvent) error {
	if strings.TrimSpace(event.ID) == "" {
		return errors.New("change event id is required")
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO change_events(id, task_name, project, operation, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.TaskName,
		event.Project,
		string(event.Operation),
		event.Detail,
		ts(normalizeEventTS(event.OccurredAt)),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// ListChangesSince lists events at or after since, newest first. A limit of
// zero or less returns every matching event.
func (j *Journal) ListChangesSince(ctx context.Context, since time.Time, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		// sqlite reads a negative LIMIT as no limit.
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, task_name, project, operation, detail, created_at
		FROM change_events
		WHERE created_at >= ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, ts(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event      domain.ChangeEvent
			opRaw      string
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &event.TaskName, &event.Project, &opRaw, &event.Detail, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = domain.ChangeOperation(opRaw)
		event.OccurredAt = parseTS(createdRaw)
		out = append(out, event)
	}
	return out, rows.Err()
}

// normalizeEventTS ensures event timestamps are always populated and UTC-normalized.
func normalizeEventTS(in time.Time) time.Time {
	if in.IsZero() {
		return time.Now().UTC()
	}
	return in.UTC()
}

// ts formats timestamps so that text ordering matches time ordering.
func ts(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	parsed, err := time.Parse(tsLayout, v)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

// tsLayout is fixed-width so lexical comparison in SQL is chronological.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
