package tui

import tea "charm.land/bubbletea/v2"

// viewMode is the top-level navigation state.
type viewMode int

// modeMain and related constants define the navigation states.
const (
	modeMain viewMode = iota
	modeOverlay
	modeNoteInput
)

// action is a classified keystroke.
type action int

// actionNone and related constants name every keyboard action.
const (
	actionNone action = iota
	actionQuit
	actionHelp
	actionNextLine
	actionPrevLine
	actionNextPage
	actionPrevPage
	actionNextProject
	actionPrevProject
	actionRefresh
	actionShowTask
	actionAddNote
	actionVersion
	actionActiveList
	actionDoneList
	actionOpenList
	actionDeletedList
	actionAllList
	actionStateSummary
	actionToggleActive
	actionMarkDone
	actionRaisePriority
	actionLowerPriority
	actionCopyName
	actionNoop
)

// transitionKey selects a handler by mode and action.
type transitionKey struct {
	mode   viewMode
	action action
}

// handler applies one transition.
type handler func(Model) (Model, tea.Cmd)

// transitions is the navigation table. A missing entry is an unknown command.
var transitions = map[transitionKey]handler{
	{modeMain, actionQuit}:          func(m Model) (Model, tea.Cmd) { return m, tea.Quit },
	{modeMain, actionHelp}:          func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewHelp), nil },
	{modeMain, actionNextLine}:      func(m Model) (Model, tea.Cmd) { m.sel.task.advanceLine(1); return m, nil },
	{modeMain, actionPrevLine}:      func(m Model) (Model, tea.Cmd) { m.sel.task.advanceLine(-1); return m, nil },
	{modeMain, actionNextPage}:      func(m Model) (Model, tea.Cmd) { m.sel.task.advancePage(1); return m, nil },
	{modeMain, actionPrevPage}:      func(m Model) (Model, tea.Cmd) { m.sel.task.advancePage(-1); return m, nil },
	{modeMain, actionNextProject}:   func(m Model) (Model, tea.Cmd) { m.sel.nextProject(m.index); return m, nil },
	{modeMain, actionPrevProject}:   func(m Model) (Model, tea.Cmd) { m.sel.prevProject(m.index); return m, nil },
	{modeMain, actionRefresh}:       Model.refresh,
	{modeMain, actionShowTask}:      Model.showCurrentTask,
	{modeMain, actionAddNote}:       Model.startNote,
	{modeMain, actionVersion}:       func(m Model) (Model, tea.Cmd) { m.banner = versionBanner(m.version); return m, nil },
	{modeMain, actionActiveList}:    func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewActiveTasks), nil },
	{modeMain, actionDoneList}:      func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewDoneTasks), nil },
	{modeMain, actionOpenList}:      func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewOpenTasks), nil },
	{modeMain, actionDeletedList}:   func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewDeletedTasks), nil },
	{modeMain, actionAllList}:       func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewAllTasks), nil },
	{modeMain, actionStateSummary}:  func(m Model) (Model, tea.Cmd) { return m.openOverlay(viewStateSummary), nil },
	{modeMain, actionToggleActive}:  Model.toggleActive,
	{modeMain, actionMarkDone}:      Model.markDone,
	{modeMain, actionRaisePriority}: Model.raisePriority,
	{modeMain, actionLowerPriority}: Model.lowerPriority,
	{modeMain, actionCopyName}:      Model.copyCurrentName,
	{modeMain, actionNoop}:          func(m Model) (Model, tea.Cmd) { return m, nil },

	{modeOverlay, actionQuit}:     Model.closeOverlay,
	{modeOverlay, actionNextLine}: func(m Model) (Model, tea.Cmd) { m.overlayCursor.advanceLine(1); return m, nil },
	{modeOverlay, actionPrevLine}: func(m Model) (Model, tea.Cmd) { m.overlayCursor.advanceLine(-1); return m, nil },
	{modeOverlay, actionNextPage}: func(m Model) (Model, tea.Cmd) { m.overlayCursor.advancePage(1); return m, nil },
	{modeOverlay, actionPrevPage}: func(m Model) (Model, tea.Cmd) { m.overlayCursor.advancePage(-1); return m, nil },
}

// dispatch runs the handler for a in the current mode, or sets the unknown-command banner.
func (m Model) dispatch(a action, keyText string) (Model, tea.Cmd) {
	h, ok := transitions[transitionKey{mode: m.mode, action: a}]
	if !ok {
		m.banner = unknownCommandBanner(keyText)
		return m, nil
	}
	return h(m)
}

// unknownCommandBanner formats the advisory shown for an unbound key.
func unknownCommandBanner(keyText string) string {
	return "? no such command: " + keyText
}

// versionBanner formats the version shown on the command line.
func versionBanner(version string) string {
	return "dbsui, v" + version + " "
}
