package tui

import (
	"strings"
	"testing"

	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/domain"
)

func TestClassifyTieBreak(t *testing.T) {
	cases := []struct {
		name     string
		selected bool
		state    domain.State
		priority domain.Priority
		want     highlight
	}{
		{"selected wins", true, domain.StateActive, domain.PriorityHigh, highlightSelected},
		{"active beats high", false, domain.StateActive, domain.PriorityHigh, highlightActive},
		{"high", false, domain.StateOpen, domain.PriorityHigh, highlightHigh},
		{"medium", false, domain.StateDone, domain.PriorityMedium, highlightMedium},
		{"normal", false, domain.StateOpen, domain.PriorityLow, highlightNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.selected, tc.state, tc.priority); got != tc.want {
				t.Fatalf("classify() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProjectTaskListKeepsBucketOrder(t *testing.T) {
	idx := app.BuildIndex([]domain.Task{
		mustTask(t, "9", "alpha", domain.PriorityLow, domain.StateOpen, "low first"),
		mustTask(t, "2", "alpha", domain.PriorityHigh, domain.StateOpen, "high"),
		mustTask(t, "1", "alpha", domain.PriorityLow, domain.StateActive, "low second"),
	})
	lines := project(viewProjectTasks, projectionInput{index: idx, project: "alpha", task: "9"})
	got := []string{lines[0].TaskName, lines[1].TaskName, lines[2].TaskName}
	want := []string{"2", "9", "1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected bucket order %v, got %v", want, got)
		}
	}
	if lines[1].Class != highlightSelected {
		t.Fatalf("expected current task selected, got %d", lines[1].Class)
	}
	if lines[2].Class != highlightActive {
		t.Fatalf("expected active task highlighted, got %d", lines[2].Class)
	}
	if lines[0].Text != "    2  [ 1]  h  high" {
		t.Fatalf("unexpected project task text %q", lines[0].Text)
	}
}

func TestFlatListsSortByName(t *testing.T) {
	first := mustTask(t, "12", "website", domain.PriorityMedium, domain.StateDone, "ship it")
	if err := first.AddNote("deployed", testNow); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	idx := app.BuildIndex([]domain.Task{
		first,
		mustTask(t, "03", "alpha", domain.PriorityLow, domain.StateDone, "old"),
		mustTask(t, "07", "alpha", domain.PriorityHigh, domain.StateDeleted, "gone"),
	})

	done := project(viewDoneTasks, projectionInput{index: idx})
	if len(done) != 2 || done[0].TaskName != "03" || done[1].TaskName != "12" {
		t.Fatalf("unexpected done list %#v", done)
	}
	if done[1].Text != "  12  website  [02]  m  ship it" {
		t.Fatalf("unexpected done text %q", done[1].Text)
	}
	if done[1].Class != highlightMedium {
		t.Fatalf("expected medium highlight, got %d", done[1].Class)
	}

	all := project(viewAllTasks, projectionInput{index: idx})
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks in all view, got %d", len(all))
	}
	if !strings.HasPrefix(all[1].Text, "  07  D    alpha") {
		t.Fatalf("expected deleted letter in all view, got %q", all[1].Text)
	}

	if got := project(viewActiveTasks, projectionInput{index: idx}); len(got) != 0 {
		t.Fatalf("expected empty active list, got %#v", got)
	}
}

func TestStateSummaryAndProjects(t *testing.T) {
	idx := app.BuildIndex([]domain.Task{
		mustTask(t, "1", "alpha", domain.PriorityHigh, domain.StateActive, "a"),
		mustTask(t, "2", "alpha", domain.PriorityLow, domain.StateDone, "b"),
		mustTask(t, "3", "averyverylongproject", domain.PriorityLow, domain.StateOpen, "c"),
	})
	rows := project(viewStateSummary, projectionInput{index: idx})
	if len(rows) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(rows))
	}
	if rows[0].Text != "alpha        1      0     1       0       2" {
		t.Fatalf("unexpected summary row %q", rows[0].Text)
	}
	if !strings.HasPrefix(rows[1].Text, "averyver  ") {
		t.Fatalf("expected truncated project name, got %q", rows[1].Text)
	}

	projects := project(viewProjects, projectionInput{index: idx, project: "averyverylongproject", projectWidth: 20})
	if projects[0].Class != highlightActive || !strings.HasSuffix(projects[0].Text, "[1]") {
		t.Fatalf("expected active project marker, got %#v", projects[0])
	}
	if projects[1].Class != highlightSelected {
		t.Fatalf("expected selected project, got %d", projects[1].Class)
	}
	if len([]rune(projects[1].Text)) > 19 {
		t.Fatalf("expected project label to fit the panel, got %q", projects[1].Text)
	}
}

func TestHelpAndShowTask(t *testing.T) {
	help := project(viewHelp, projectionInput{help: []helpEntry{{"s", "Show"}, {"?", "help"}}})
	if len(help) != 2 || !strings.HasPrefix(help[0].Text, "?              ") {
		t.Fatalf("expected sorted padded help rows, got %#v", help)
	}

	task := mustTask(t, "5", "alpha", domain.PriorityHigh, domain.StateOpen, "call bob")
	idx := app.BuildIndex([]domain.Task{task})
	show := project(viewShowTask, projectionInput{index: idx, task: "5"})
	if len(show) != 6 {
		t.Fatalf("expected 5 fields and 1 note, got %d", len(show))
	}
	if show[0].Text != "Name: 5" || show[1].Text != "Task: call bob" || !strings.HasSuffix(show[5].Text, "created") {
		t.Fatalf("unexpected show lines %#v", show)
	}
	if got := project(viewShowTask, projectionInput{index: idx, task: "missing"}); len(got) != 0 {
		t.Fatalf("expected empty show for missing task, got %#v", got)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	idx := sampleIndex(t)
	in := projectionInput{index: idx, project: "alpha", task: "t1"}
	for _, kind := range []viewKind{viewProjects, viewProjectTasks, viewAllTasks, viewStateSummary} {
		a := project(kind, in)
		b := project(kind, in)
		if len(a) != len(b) {
			t.Fatalf("kind %d: length changed", kind)
		}
		for i := range a {
			if a[i].Text != b[i].Text || a[i].Class != b[i].Class {
				t.Fatalf("kind %d: line %d differs", kind, i)
			}
		}
	}
}
