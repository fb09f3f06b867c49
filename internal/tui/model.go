package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/paginator"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	RebuildIndex(context.Context) (app.Index, []app.ScanIssue, error)
	AppendNote(context.Context, string, string) (domain.Task, error)
	ChangeState(context.Context, string, domain.State) (domain.Task, error)
	ToggleActive(context.Context, string) (domain.Task, error)
	RaisePriority(context.Context, string) (domain.Task, error)
	LowerPriority(context.Context, string) (domain.Task, error)
}

// Header and trailer texts.
const (
	mainHeaderFormat  = "dbs || q: Quit   %s: Show Task   ?: Help"
	helpHeader        = "Help || j: NextLine   k: PrevLine  q: Quit"
	showHeader        = "Show Task || j: NextLine   k: PrevLine  q: Quit"
	tasksHeader       = "Name  Project  Note  P  Task"
	allTasksHeader    = "Name  S  Project  Note  P  Task"
	stateCountsHeader = "Project  Active  Open  Done  Deleted   Total"
	listTrailerFormat = " %s Tasks: %d || j: Next   k: Previous   q: Quit "
	notePrompt        = "Add note: "
)

// DefaultProjectWidth is the project list width used when none is configured.
const DefaultProjectWidth = 20

// Model is the Bubble Tea model for the dbs terminal UI.
type Model struct {
	svc Service

	ready  bool
	loaded bool
	width  int
	height int
	err    error

	version      string
	projectWidth int
	copyText     func(string) error

	keys   keyMap
	help   help.Model
	styles styles
	pages  paginator.Model

	mode  viewMode
	index app.Index
	sel   selection

	overlay       viewKind
	overlayLines  []line
	overlayCursor pager
	overlayTask   string

	noteInput textinput.Model
	noteTask  string

	banner string
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	index  app.Index
	issues []app.ScanIssue
	err    error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	noteInput := textinput.New()
	noteInput.Prompt = ""
	noteInput.Placeholder = "one line of text"
	noteInput.CharLimit = 500
	pages := paginator.New()
	pages.Type = paginator.Arabic
	m := Model{
		svc:           svc,
		version:       "dev",
		projectWidth:  DefaultProjectWidth,
		copyText:      clipboard.WriteAll,
		keys:          newKeyMap(),
		help:          h,
		styles:        newStyles(),
		pages:         pages,
		sel:           newSelection(1),
		overlayCursor: newPager(1),
		noteInput:     noteInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData runs the initial index rebuild.
func (m Model) loadData() tea.Msg {
	idx, issues, err := m.svc.RebuildIndex(context.Background())
	return loadedMsg{index: idx, issues: issues, err: err}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.applyGeometry()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.loaded = true
		m.index = msg.index
		m.sel.reset(m.index)
		m.applyGeometry()
		if len(msg.issues) > 0 {
			m.banner = scanIssueBanner(msg.issues)
		}
		return m, nil

	case tea.KeyPressMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		if m.err != nil {
			return m.handleLoadErrorKey(msg)
		}
		if !m.loaded {
			// Keys are not interpreted before the first scan completes.
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.mode == modeNoteInput {
			return m.handleNoteInputKey(msg)
		}
		m.banner = ""
		a, ok := m.keys.classify(msg)
		if !ok {
			m.banner = unknownCommandBanner(msg.String())
			return m, nil
		}
		return m.dispatch(a, msg.String())

	default:
		if m.mode == modeNoteInput {
			var cmd tea.Cmd
			m.noteInput, cmd = m.noteInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// handleLoadErrorKey offers retry and quit after a failed initial scan.
func (m Model) handleLoadErrorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	a, _ := m.keys.classify(msg)
	switch a {
	case actionQuit:
		return m, tea.Quit
	case actionRefresh:
		m.err = nil
		return m, m.loadData
	default:
		return m, nil
	}
}

// applyGeometry recomputes panel heights and re-clamps every cursor.
func (m *Model) applyGeometry() {
	l := m.layout()
	m.sel.resize(l.bodyHeight)
	m.overlayCursor.resize(l.bodyHeight)
}

func (m Model) layout() layout {
	return computeLayout(m.width, m.height, m.projectWidth)
}

// openOverlay projects kind into a full-width list. The content stays fixed until reopened.
func (m Model) openOverlay(kind viewKind) Model {
	m.mode = modeOverlay
	m.overlay = kind
	m.overlayTask = m.sel.currentTask()
	m.overlayLines = project(kind, m.projectionInput())
	m.overlayCursor.setLength(len(m.overlayLines))
	m.overlayCursor.reset()
	return m
}

// closeOverlay returns to the main view.
func (m Model) closeOverlay() (Model, tea.Cmd) {
	m.mode = modeMain
	m.overlayLines = nil
	m.overlayCursor.setLength(0)
	m.overlayCursor.reset()
	return m, nil
}

func (m Model) projectionInput() projectionInput {
	return projectionInput{
		index:        m.index,
		project:      m.sel.currentProject(),
		task:         m.sel.currentTask(),
		help:         m.keys.helpEntries(),
		projectWidth: m.layout().projectWidth,
	}
}

// refresh rebuilds the index and resets cursors to the first project and task.
func (m Model) refresh() (Model, tea.Cmd) {
	idx, issues, err := m.svc.RebuildIndex(context.Background())
	if err != nil {
		m.banner = "error: refresh failed: " + err.Error()
		return m, nil
	}
	m.index = idx
	m.sel.reset(idx)
	if len(issues) > 0 {
		m.banner = scanIssueBanner(issues)
	}
	return m, nil
}

// showCurrentTask opens the detail overlay for the current task.
func (m Model) showCurrentTask() (Model, tea.Cmd) {
	if m.sel.currentTask() == "" {
		m.banner = "? no current task"
		return m, nil
	}
	return m.openOverlay(viewShowTask), nil
}

// startNote switches the command line to note input for the current task.
func (m Model) startNote() (Model, tea.Cmd) {
	name := m.sel.currentTask()
	if name == "" {
		m.banner = "? no current task"
		return m, nil
	}
	m.mode = modeNoteInput
	m.noteTask = name
	m.noteInput.Reset()
	cmd := m.noteInput.Focus()
	return m, cmd
}

// handleNoteInputKey routes keys to the note input until it is submitted or cancelled.
func (m Model) handleNoteInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.mode = modeMain
		m.noteInput.Blur()
		m.banner = ""
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m.submitNote()
	}
	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

// submitNote writes the note and patches the cached task in place.
func (m Model) submitNote() (tea.Model, tea.Cmd) {
	m.mode = modeMain
	m.noteInput.Blur()
	text := strings.TrimSpace(m.noteInput.Value())
	m.noteInput.Reset()
	if text == "" {
		m.banner = ""
		return m, nil
	}
	task, err := m.svc.AppendNote(context.Background(), m.noteTask, text)
	if err != nil {
		m.banner = "error: note not saved: " + err.Error()
		return m, nil
	}
	if !m.index.PatchTask(task) {
		return m.rebuildAfterWrite(fmt.Sprintf("note added to %s", task.Name))
	}
	m.banner = fmt.Sprintf("note added to %s", task.Name)
	return m, nil
}

// toggleActive flips the current task between open and active.
func (m Model) toggleActive() (Model, tea.Cmd) {
	return m.mutateCurrent(func(ctx context.Context, name string) (domain.Task, error) {
		return m.svc.ToggleActive(ctx, name)
	}, func(t domain.Task) string { return fmt.Sprintf("%s is now %s", t.Name, t.State) })
}

// markDone moves the current task to done.
func (m Model) markDone() (Model, tea.Cmd) {
	return m.mutateCurrent(func(ctx context.Context, name string) (domain.Task, error) {
		return m.svc.ChangeState(ctx, name, domain.StateDone)
	}, func(t domain.Task) string { return fmt.Sprintf("%s is now done", t.Name) })
}

// raisePriority raises the current task priority one level.
func (m Model) raisePriority() (Model, tea.Cmd) {
	return m.mutateCurrent(func(ctx context.Context, name string) (domain.Task, error) {
		return m.svc.RaisePriority(ctx, name)
	}, func(t domain.Task) string { return fmt.Sprintf("%s priority is now %s", t.Name, t.Priority.Label()) })
}

// lowerPriority lowers the current task priority one level.
func (m Model) lowerPriority() (Model, tea.Cmd) {
	return m.mutateCurrent(func(ctx context.Context, name string) (domain.Task, error) {
		return m.svc.LowerPriority(ctx, name)
	}, func(t domain.Task) string { return fmt.Sprintf("%s priority is now %s", t.Name, t.Priority.Label()) })
}

// mutateCurrent applies a state or priority change, then rebuilds the index.
// A failed write leaves the cached index untouched.
func (m Model) mutateCurrent(write func(context.Context, string) (domain.Task, error), status func(domain.Task) string) (Model, tea.Cmd) {
	name := m.sel.currentTask()
	if name == "" {
		m.banner = "? no current task"
		return m, nil
	}
	task, err := write(context.Background(), name)
	if err != nil {
		m.banner = "error: " + err.Error()
		return m, nil
	}
	return m.rebuildAfterWrite(status(task))
}

// rebuildAfterWrite rebuilds the index and keeps cursors where they still apply.
func (m Model) rebuildAfterWrite(status string) (Model, tea.Cmd) {
	idx, issues, err := m.svc.RebuildIndex(context.Background())
	if err != nil {
		m.banner = "error: saved, but refresh failed: " + err.Error()
		return m, nil
	}
	m.index = idx
	m.sel.revalidate(idx)
	m.banner = status
	if len(issues) > 0 {
		m.banner = status + "; " + scanIssueBanner(issues)
	}
	return m, nil
}

// copyCurrentName copies the current task name to the system clipboard.
func (m Model) copyCurrentName() (Model, tea.Cmd) {
	name := m.sel.currentTask()
	if name == "" {
		m.banner = "? no current task"
		return m, nil
	}
	if err := m.copyText(name); err != nil {
		m.banner = "error: copy failed: " + err.Error()
		return m, nil
	}
	m.banner = "copied " + name
	return m, nil
}

// scanIssueBanner summarizes unreadable task records.
func scanIssueBanner(issues []app.ScanIssue) string {
	if len(issues) == 1 {
		return "skipped unreadable task " + issues[0].Key
	}
	return fmt.Sprintf("skipped %d unreadable tasks", len(issues))
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes the whole screen as text.
func (m Model) render() string {
	switch {
	case m.err != nil:
		return "error: " + m.err.Error() + "\n\npress " + m.keys.refresh.Help().Key + " to retry • q quit\n"
	case !m.ready || !m.loaded:
		return "loading..."
	}
	l := m.layout()
	if l.tooSmall {
		return tooSmallNotice(m.width, m.height)
	}
	return m.renderScreen(l)
}

// renderScreen composes header, body, trailer and command line.
func (m Model) renderScreen(l layout) string {
	header := panel{kind: panelHeader, width: l.width, text: m.headerText()}
	trailer := panel{kind: panelTrailer, width: l.width}
	var body string
	if m.mode == modeOverlay {
		trailer.text, trailer.right = m.overlayTrailer()
		body = m.overlayPanel(l).render(m.styles)
	} else {
		sum := m.index.Counts()
		trailer.text = fmt.Sprintf(" dbs: %d projects, %d tasks, %d active ", sum.Projects, sum.Tasks, sum.Active)
		trailer.right = " v" + m.version + " "
		projects, tasks := m.mainPanels(l)
		body = lipgloss.JoinHorizontal(lipgloss.Top, projects.render(m.styles), tasks.render(m.styles))
	}
	cli := panel{kind: panelCommandLine, width: l.width, text: m.banner}
	if m.mode == modeNoteInput {
		cli.prompt = notePrompt
		cli.text = m.noteInput.View()
	}
	rows := []string{header.render(m.styles), body, trailer.render(m.styles), cli.render(m.styles)}
	if m.mode == modeNoteInput && l.height > chromeRows+1 {
		hint := m.help
		hint.SetWidth(l.width)
		rows[1] = replaceLastLine(rows[1], m.styles.muted.Render(fill(hint.View(m.keys), l.width)))
	}
	return strings.Join(rows, "\n")
}

// headerText returns the header for the current mode.
func (m Model) headerText() string {
	if m.mode != modeOverlay {
		return fmt.Sprintf(mainHeaderFormat, m.keys.showTask.Help().Key)
	}
	switch m.overlay {
	case viewHelp:
		return helpHeader
	case viewShowTask:
		return showHeader
	case viewStateSummary:
		return stateCountsHeader + "  || State Counts "
	case viewAllTasks:
		return allTasksHeader + " || All Tasks "
	default:
		return tasksHeader + " || " + overlayTitle(m.overlay) + " Tasks "
	}
}

// overlayTrailer returns the trailer text and page indicator for the open overlay.
func (m Model) overlayTrailer() (string, string) {
	pages := m.pages
	pages.PerPage = max(1, m.overlayCursor.height)
	pages.SetTotalPages(max(1, len(m.overlayLines)))
	pages.Page = m.overlayCursor.page
	right := " " + pages.View() + " "

	n := len(m.overlayLines)
	switch m.overlay {
	case viewHelp:
		suffix := ""
		if n != 1 {
			suffix = "s"
		}
		return fmt.Sprintf(" help: %d command%s ", n, suffix), right
	case viewShowTask:
		return fmt.Sprintf(" show: task %s ", m.overlayTask), right
	case viewStateSummary:
		return fmt.Sprintf(" projects: %d ", n), right
	default:
		return fmt.Sprintf(listTrailerFormat, overlayTitle(m.overlay), n), right
	}
}

// overlayTitle names a flat task list.
func overlayTitle(kind viewKind) string {
	switch kind {
	case viewActiveTasks:
		return "Active"
	case viewDoneTasks:
		return "Done"
	case viewOpenTasks:
		return "Open"
	case viewDeletedTasks:
		return "Deleted"
	default:
		return "All"
	}
}

// overlayPanel slices the overlay lines to the current page and marks the cursor line.
func (m Model) overlayPanel(l layout) panel {
	start, end := m.overlayCursor.window()
	lines := make([]line, 0, end-start)
	for i := start; i < end; i++ {
		ln := m.overlayLines[i]
		if i == m.overlayCursor.index {
			ln.Class = highlightSelected
		}
		lines = append(lines, ln)
	}
	return panel{kind: panelOverlayList, width: l.width, height: l.bodyHeight, lines: lines, empty: "none found"}
}

// mainPanels builds the paged project and task panels.
func (m Model) mainPanels(l layout) (panel, panel) {
	in := m.projectionInput()
	projectLines := project(viewProjects, in)
	taskLines := project(viewProjectTasks, in)
	ps, pe := m.sel.project.window()
	ts, te := m.sel.task.window()
	projects := panel{
		kind:   panelProjectList,
		width:  l.projectWidth,
		height: l.bodyHeight,
		lines:  projectLines[min(ps, len(projectLines)):min(pe, len(projectLines))],
		empty:  "no active projects",
	}
	tasks := panel{
		kind:   panelTaskList,
		width:  l.taskWidth,
		height: l.bodyHeight,
		lines:  taskLines[min(ts, len(taskLines)):min(te, len(taskLines))],
		empty:  "none found",
	}
	return projects, tasks
}

// replaceLastLine swaps the last row of a multi-line block.
func replaceLastLine(block, last string) string {
	i := strings.LastIndex(block, "\n")
	if i < 0 {
		return last
	}
	return block[:i+1] + last
}
