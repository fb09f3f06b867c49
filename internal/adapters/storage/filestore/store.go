package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/domain"
	"github.com/peterbourgon/diskv/v3"
	"gopkg.in/yaml.v3"
)

// keySeparator joins the state partition and the task name into a store key.
const keySeparator = "/"

// Store keeps one YAML file per task under <root>/<state>/<name>.
type Store struct {
	d    *diskv.Diskv
	root string
}

// record is the on-disk task layout.
type record struct {
	Name     string       `yaml:"name"`
	Project  string       `yaml:"project"`
	Priority string       `yaml:"priority"`
	State    string       `yaml:"state"`
	Task     string       `yaml:"task"`
	Notes    []noteRecord `yaml:"notes,omitempty"`
}

type noteRecord struct {
	At   time.Time `yaml:"at"`
	Text string    `yaml:"text"`
}

// Open prepares a store rooted at root, creating the state partitions.
func Open(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("task store path is required")
	}
	for _, state := range domain.States() {
		if err := os.MkdirAll(filepath.Join(root, string(state)), 0o755); err != nil {
			return nil, fmt.Errorf("create %s partition: %w", state, err)
		}
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          root,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// No read cache: the CLI and the UI may edit the same files.
			CacheSizeMax: 0,
		}),
		root: root,
	}, nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// EnumerateTasks returns every decodable task in one partition, sorted by key.
// Records that fail to decode or validate are reported, never defaulted.
func (s *Store) EnumerateTasks(ctx context.Context, state domain.State) ([]domain.Task, []app.ScanIssue, error) {
	if !state.Valid() {
		return nil, nil, domain.ErrInvalidState
	}
	keys := make([]string, 0)
	for key := range s.d.KeysPrefix(string(state)+keySeparator, ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	slices.Sort(keys)

	tasks := make([]domain.Task, 0, len(keys))
	var issues []app.ScanIssue
	for _, key := range keys {
		task, err := s.read(key)
		if err != nil {
			issues = append(issues, app.ScanIssue{Key: key, Err: err})
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, issues, nil
}

// LoadTask finds a task by name, searching partitions in scan order.
func (s *Store) LoadTask(_ context.Context, name string) (domain.Task, error) {
	if !domain.ValidName(name) {
		return domain.Task{}, app.ErrNotFound
	}
	for _, state := range domain.States() {
		key := toKey(state, name)
		if !s.d.Has(key) {
			continue
		}
		return s.read(key)
	}
	return domain.Task{}, fmt.Errorf("task %s: %w", name, app.ErrNotFound)
}

// CreateTask writes a new task. Names are unique across all partitions.
func (s *Store) CreateTask(_ context.Context, t domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, ok := s.locate(t.Name); ok {
		return fmt.Errorf("task %s: %w", t.Name, app.ErrAlreadyExists)
	}
	return s.write(t)
}

// UpdateTask rewrites a task. When its state changed the record is written to
// the new partition first and the old record erased afterwards.
func (s *Store) UpdateTask(_ context.Context, t domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	prev, ok := s.locate(t.Name)
	if !ok {
		return fmt.Errorf("task %s: %w", t.Name, app.ErrNotFound)
	}
	if err := s.write(t); err != nil {
		return err
	}
	if prev == t.State {
		return nil
	}
	if err := s.d.Erase(toKey(prev, t.Name)); err != nil {
		return fmt.Errorf("erase %s/%s: %w", prev, t.Name, err)
	}
	return nil
}

func (s *Store) locate(name string) (domain.State, bool) {
	for _, state := range domain.States() {
		if s.d.Has(toKey(state, name)) {
			return state, true
		}
	}
	return "", false
}

func (s *Store) read(key string) (domain.Task, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		return domain.Task{}, fmt.Errorf("read %s: %w", key, err)
	}
	var rec record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return domain.Task{}, fmt.Errorf("decode %s: %w", key, err)
	}
	pk := keyToPathTransform(key)
	task := domain.Task{
		Name:        pk.FileName,
		Project:     strings.TrimSpace(rec.Project),
		Priority:    domain.Priority(strings.TrimSpace(rec.Priority)),
		State:       domain.State(pk.Path[0]),
		Description: strings.TrimSpace(rec.Task),
	}
	for _, n := range rec.Notes {
		task.Notes = append(task.Notes, domain.Note{Text: n.Text, CreatedAt: n.At.UTC()})
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, fmt.Errorf("validate %s: %w", key, err)
	}
	return task, nil
}

func (s *Store) write(t domain.Task) error {
	rec := record{
		Name:     t.Name,
		Project:  t.Project,
		Priority: string(t.Priority),
		State:    string(t.State),
		Task:     t.Description,
	}
	for _, n := range t.Notes {
		rec.Notes = append(rec.Notes, noteRecord{At: n.CreatedAt.UTC(), Text: n.Text})
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.Name, err)
	}
	if err := s.d.Write(toKey(t.State, t.Name), data); err != nil {
		return fmt.Errorf("write %s/%s: %w", t.State, t.Name, err)
	}
	return nil
}

func toKey(state domain.State, name string) string {
	return string(state) + keySeparator + name
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, keySeparator)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(slices.Clone(pathKey.Path), pathKey.FileName), keySeparator)
}
