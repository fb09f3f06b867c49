package app

import (
	"slices"

	"github.com/hylla/dbs/internal/domain"
)

// Aggregate holds per-project counts derived from the task table.
type Aggregate struct {
	High    int
	Medium  int
	Low     int
	Open    int
	Active  int
	Done    int
	Deleted int
}

// IsActive reports whether the project still has open or active work.
func (a Aggregate) IsActive() bool {
	return a.Open+a.Active > 0
}

// Total returns the number of tasks counted for the project.
func (a Aggregate) Total() int {
	return a.Open + a.Active + a.Done + a.Deleted
}

// ByState returns the count for one lifecycle state.
func (a Aggregate) ByState(s domain.State) int {
	switch s {
	case domain.StateOpen:
		return a.Open
	case domain.StateActive:
		return a.Active
	case domain.StateDone:
		return a.Done
	case domain.StateDeleted:
		return a.Deleted
	default:
		return 0
	}
}

// ByPriority returns the count for one priority.
func (a Aggregate) ByPriority(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return a.High
	case domain.PriorityMedium:
		return a.Medium
	case domain.PriorityLow:
		return a.Low
	default:
		return 0
	}
}

func (a *Aggregate) count(t domain.Task) {
	switch t.Priority {
	case domain.PriorityHigh:
		a.High++
	case domain.PriorityMedium:
		a.Medium++
	case domain.PriorityLow:
		a.Low++
	}
	switch t.State {
	case domain.StateOpen:
		a.Open++
	case domain.StateActive:
		a.Active++
	case domain.StateDone:
		a.Done++
	case domain.StateDeleted:
		a.Deleted++
	}
}

// Bucket holds an active project's open and active task names by priority, in scan order.
type Bucket struct {
	High   []string
	Medium []string
	Low    []string
}

// Combined returns the bucket flattened in high, medium, low order.
func (b Bucket) Combined() []string {
	out := make([]string, 0, len(b.High)+len(b.Medium)+len(b.Low))
	out = append(out, b.High...)
	out = append(out, b.Medium...)
	return append(out, b.Low...)
}

// Len returns the number of tasks in the bucket.
func (b Bucket) Len() int {
	return len(b.High) + len(b.Medium) + len(b.Low)
}

func (b *Bucket) add(t domain.Task) {
	switch t.Priority {
	case domain.PriorityHigh:
		b.High = append(b.High, t.Name)
	case domain.PriorityMedium:
		b.Medium = append(b.Medium, t.Name)
	case domain.PriorityLow:
		b.Low = append(b.Low, t.Name)
	}
}

// Summary is the headline count shown in status lines.
type Summary struct {
	Projects int
	Tasks    int
	Active   int
}

// Index is the in-memory view of the task store.
//
// Tasks holds the first occurrence of every name. Projects and Active are
// derived from Tasks and are only ever rebuilt wholesale by BuildIndex.
type Index struct {
	Tasks    map[string]domain.Task
	Order    []string
	Projects map[string]Aggregate
	Active   map[string]Bucket
}

// BuildIndex aggregates tasks into an Index. When a name appears more than
// once the first occurrence wins, so callers should pass tasks in state scan order.
func BuildIndex(tasks []domain.Task) Index {
	idx := Index{
		Tasks:    make(map[string]domain.Task, len(tasks)),
		Order:    make([]string, 0, len(tasks)),
		Projects: map[string]Aggregate{},
		Active:   map[string]Bucket{},
	}
	for _, t := range tasks {
		if _, seen := idx.Tasks[t.Name]; seen {
			continue
		}
		idx.Tasks[t.Name] = t
		idx.Order = append(idx.Order, t.Name)
		agg := idx.Projects[t.Project]
		agg.count(t)
		idx.Projects[t.Project] = agg
	}
	for name, agg := range idx.Projects {
		if agg.IsActive() {
			idx.Active[name] = Bucket{}
		}
	}
	for _, name := range idx.Order {
		t := idx.Tasks[name]
		bucket, ok := idx.Active[t.Project]
		if !ok || !t.State.Workable() {
			continue
		}
		bucket.add(t)
		idx.Active[t.Project] = bucket
	}
	return idx
}

// ActiveProjectNames returns active project names sorted by name.
func (idx Index) ActiveProjectNames() []string {
	names := make([]string, 0, len(idx.Active))
	for name := range idx.Active {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ProjectNames returns every known project name sorted by name.
func (idx Index) ProjectNames() []string {
	names := make([]string, 0, len(idx.Projects))
	for name := range idx.Projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Bucket returns the task bucket for an active project.
func (idx Index) Bucket(project string) Bucket {
	return idx.Active[project]
}

// Task looks up a cached task by name.
func (idx Index) Task(name string) (domain.Task, bool) {
	t, ok := idx.Tasks[name]
	return t, ok
}

// TasksInStates returns cached tasks in any of the given states, sorted by name.
// With no states every task is returned.
func (idx Index) TasksInStates(states ...domain.State) []domain.Task {
	out := make([]domain.Task, 0, len(idx.Tasks))
	for _, name := range idx.Order {
		t := idx.Tasks[name]
		if len(states) > 0 && !slices.Contains(states, t.State) {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Counts returns the number of active projects, non-deleted tasks and active tasks.
func (idx Index) Counts() Summary {
	var sum Summary
	for _, t := range idx.Tasks {
		if t.State == domain.StateActive {
			sum.Active++
		}
		if t.State != domain.StateDeleted {
			sum.Tasks++
		}
	}
	sum.Projects = len(idx.Active)
	return sum
}

// PatchTask replaces one cached task in place. It refuses patches that would
// move the task between projects, priorities or states, since those change
// aggregates that only a rebuild may recompute.
func (idx Index) PatchTask(t domain.Task) bool {
	cur, ok := idx.Tasks[t.Name]
	if !ok {
		return false
	}
	if cur.Project != t.Project || cur.Priority != t.Priority || cur.State != t.State {
		return false
	}
	idx.Tasks[t.Name] = t
	return true
}
