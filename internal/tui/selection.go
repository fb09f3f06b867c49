package tui

import (
	"slices"

	"github.com/hylla/dbs/internal/app"
)

// selection holds the current project and task cursors for the main view.
//
// When task is non-empty it is always a member of the current project's
// combined high, medium, low bucket.
type selection struct {
	projects []string
	project  pager
	tasks    []string
	task     pager
}

// newSelection constructs cursors for panels of the given body height.
func newSelection(height int) selection {
	return selection{
		project: newPager(height),
		task:    newPager(height),
	}
}

// reset points both cursors at the first entries of idx.
func (s *selection) reset(idx app.Index) {
	s.projects = idx.ActiveProjectNames()
	s.project.setLength(len(s.projects))
	s.project.reset()
	s.loadTasks(idx)
}

// revalidate keeps the current project and task when they survive a rebuild
// and falls back to the first entry otherwise.
func (s *selection) revalidate(idx app.Index) {
	project, task := s.currentProject(), s.currentTask()
	s.projects = idx.ActiveProjectNames()
	s.project.setLength(len(s.projects))
	if i := slices.Index(s.projects, project); i >= 0 {
		s.project.setIndex(i)
	} else {
		s.project.reset()
		s.loadTasks(idx)
		return
	}
	s.loadTasks(idx)
	if i := slices.Index(s.tasks, task); i >= 0 {
		s.task.setIndex(i)
	}
}

// loadTasks reloads the task list for the current project and resets the task cursor.
func (s *selection) loadTasks(idx app.Index) {
	s.tasks = idx.Bucket(s.currentProject()).Combined()
	s.task.setLength(len(s.tasks))
	s.task.reset()
}

// nextProject moves to the next project. It reports whether the project changed.
func (s *selection) nextProject(idx app.Index) bool {
	return s.moveProject(idx, 1)
}

// prevProject moves to the previous project. It reports whether the project changed.
func (s *selection) prevProject(idx app.Index) bool {
	return s.moveProject(idx, -1)
}

func (s *selection) moveProject(idx app.Index, delta int) bool {
	before := s.project.index
	s.project.advanceLine(delta)
	if s.project.index == before {
		return false
	}
	s.loadTasks(idx)
	return true
}

// currentProject returns the selected project name or "".
func (s selection) currentProject() string {
	if len(s.projects) == 0 {
		return ""
	}
	return s.projects[s.project.index]
}

// currentTask returns the selected task name or "".
func (s selection) currentTask() string {
	if len(s.tasks) == 0 {
		return ""
	}
	return s.tasks[s.task.index]
}

// resize sets the panel height shared by the project and task lists.
func (s *selection) resize(height int) {
	s.project.resize(height)
	s.task.resize(height)
}
