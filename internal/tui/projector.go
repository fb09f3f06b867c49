package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/domain"
	"github.com/mattn/go-runewidth"
)

// viewKind selects what a projection lists.
type viewKind int

// viewProjects and related constants name every projection.
const (
	viewProjects viewKind = iota
	viewProjectTasks
	viewActiveTasks
	viewDoneTasks
	viewOpenTasks
	viewDeletedTasks
	viewAllTasks
	viewStateSummary
	viewHelp
	viewShowTask
)

// highlight classifies how a projected line is drawn.
type highlight int

// highlightNormal and related constants are ordered from weakest to strongest.
const (
	highlightNormal highlight = iota
	highlightMedium
	highlightHigh
	highlightActive
	highlightSelected
)

// line is one projected display row.
type line struct {
	TaskName    string
	Project     string
	Notes       int
	Priority    domain.Priority
	State       domain.State
	Description string
	Text        string
	Class       highlight
}

// helpEntry is one row of the command help list.
type helpEntry struct {
	Key  string
	Desc string
}

// projectionInput carries everything a projection reads.
type projectionInput struct {
	index        app.Index
	project      string
	task         string
	help         []helpEntry
	projectWidth int
}

// project builds the ordered display lines for kind. It never mutates its input.
func project(kind viewKind, in projectionInput) []line {
	switch kind {
	case viewProjects:
		return projectList(in)
	case viewProjectTasks:
		return projectTaskList(in)
	case viewActiveTasks:
		return flatTaskList(in, false, domain.StateActive)
	case viewDoneTasks:
		return flatTaskList(in, false, domain.StateDone)
	case viewOpenTasks:
		return flatTaskList(in, false, domain.StateOpen)
	case viewDeletedTasks:
		return flatTaskList(in, false, domain.StateDeleted)
	case viewAllTasks:
		return flatTaskList(in, true)
	case viewStateSummary:
		return stateSummary(in)
	case viewHelp:
		return helpList(in)
	case viewShowTask:
		return showTask(in)
	default:
		return []line{}
	}
}

// classify applies the highlight tie-break: selected, active, high, medium, normal.
func classify(selected bool, state domain.State, priority domain.Priority) highlight {
	switch {
	case selected:
		return highlightSelected
	case state == domain.StateActive:
		return highlightActive
	case priority == domain.PriorityHigh:
		return highlightHigh
	case priority == domain.PriorityMedium:
		return highlightMedium
	default:
		return highlightNormal
	}
}

func projectList(in projectionInput) []line {
	width := max(in.projectWidth, 8)
	names := in.index.ActiveProjectNames()
	out := make([]line, 0, len(names))
	for _, name := range names {
		agg := in.index.Projects[name]
		text := runewidth.Truncate(name, width-1, "")
		class := highlightNormal
		if agg.Active > 0 {
			suffix := fmt.Sprintf(" [%d]", agg.Active)
			text = runewidth.FillRight(runewidth.Truncate(name, width-1-len(suffix), ""), width-1-len(suffix)) + suffix
			class = highlightActive
		}
		if name == in.project {
			class = highlightSelected
		}
		out = append(out, line{Project: name, Text: text, Class: class})
	}
	return out
}

func projectTaskList(in projectionInput) []line {
	names := in.index.Bucket(in.project).Combined()
	out := make([]line, 0, len(names))
	for _, name := range names {
		t, ok := in.index.Task(name)
		if !ok {
			continue
		}
		text := fmt.Sprintf("%s  %4s  %1s  %s", fitRight(t.Name, 5), noteBadge(t.NoteCount(), "[%2d]"), t.Priority, t.Description)
		out = append(out, taskLine(t, text, classify(name == in.task, t.State, t.Priority)))
	}
	return out
}

func flatTaskList(in projectionInput, withState bool, states ...domain.State) []line {
	tasks := in.index.TasksInStates(states...)
	out := make([]line, 0, len(tasks))
	for _, t := range tasks {
		var b strings.Builder
		b.WriteString(fitRight(t.Name, 4))
		b.WriteString("  ")
		if withState {
			b.WriteString(t.State.Letter())
			b.WriteString("  ")
		}
		b.WriteString(fitRight(t.Project, 7))
		b.WriteString("  ")
		b.WriteString(noteBadge(t.NoteCount(), "[%02d]"))
		b.WriteString("  ")
		b.WriteString(string(t.Priority))
		b.WriteString("  ")
		b.WriteString(t.Description)
		out = append(out, taskLine(t, b.String(), classify(false, t.State, t.Priority)))
	}
	return out
}

func stateSummary(in projectionInput) []line {
	projects := in.index.ProjectNames()
	out := make([]line, 0, len(projects))
	for _, name := range projects {
		agg := in.index.Projects[name]
		text := fmt.Sprintf("%s  %4d   %4d  %4d    %4d    %4d",
			runewidth.FillRight(runewidth.Truncate(name, 8, ""), 8),
			agg.Active, agg.Open, agg.Done, agg.Deleted, agg.Total())
		out = append(out, line{Project: name, Text: text})
	}
	return out
}

func helpList(in projectionInput) []line {
	entries := slices.Clone(in.help)
	slices.SortFunc(entries, func(a, b helpEntry) int {
		return strings.Compare(a.Key, b.Key)
	})
	out := make([]line, 0, len(entries))
	for _, e := range entries {
		out = append(out, line{Text: fmt.Sprintf("%-15s   %s", e.Key, e.Desc)})
	}
	return out
}

func showTask(in projectionInput) []line {
	t, ok := in.index.Task(in.task)
	if !ok {
		return []line{}
	}
	out := []line{
		{TaskName: t.Name, Text: "Name: " + t.Name},
		{TaskName: t.Name, Text: "Task: " + t.Description},
		{TaskName: t.Name, Text: "State: " + string(t.State)},
		{TaskName: t.Name, Text: "Project: " + t.Project},
		{TaskName: t.Name, Text: "Priority: " + string(t.Priority)},
	}
	for _, n := range t.Notes {
		out = append(out, line{TaskName: t.Name, Text: "Note: " + n.CreatedAt.Local().Format(time.DateTime) + "  " + n.Text})
	}
	return out
}

func taskLine(t domain.Task, text string, class highlight) line {
	return line{
		TaskName:    t.Name,
		Project:     t.Project,
		Notes:       t.NoteCount(),
		Priority:    t.Priority,
		State:       t.State,
		Description: t.Description,
		Text:        text,
		Class:       class,
	}
}

// noteBadge renders a four-column note counter, blank when there are no notes.
func noteBadge(n int, format string) string {
	if n <= 0 {
		return "    "
	}
	return fmt.Sprintf(format, min(n, 99))
}

// fitRight truncates s to width cells and right-aligns it.
func fitRight(s string, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(s, width, ""), width)
}
