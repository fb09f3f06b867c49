package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// KeyConfig holds user overrides for rebindable keys. Values are comma separated.
type KeyConfig struct {
	AddNote  string
	ShowTask string
	Refresh  string
	CopyName string
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	forceQuit    key.Binding
	help         key.Binding
	nextLine     key.Binding
	prevLine     key.Binding
	nextPage     key.Binding
	prevPage     key.Binding
	nextProject  key.Binding
	prevProject  key.Binding
	refresh      key.Binding
	showTask     key.Binding
	addNote      key.Binding
	version      key.Binding
	activeList   key.Binding
	doneList     key.Binding
	openList     key.Binding
	deletedList  key.Binding
	allList      key.Binding
	stateSummary key.Binding
	toggleActive key.Binding
	markDone     key.Binding
	raise        key.Binding
	lower        key.Binding
	copyName     key.Binding
	enter        key.Binding
	submit       key.Binding
	cancel       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit, or close the current list")),
		forceQuit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl-C", "Quit from anywhere")),
		help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help (show this list)")),
		nextLine:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j, <down arrow>", "Next line")),
		prevLine:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k, <up arrow>", "Previous line")),
		nextPage:     key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("<PgDn>", "Next page")),
		prevPage:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("<PgUp>", "Previous page")),
		nextProject:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl-N", "Next project")),
		prevProject:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl-P", "Previous project")),
		refresh:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl-R", "Refresh all project and task info")),
		showTask:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Show the current task")),
		addNote:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Add a note to the current task")),
		version:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "Display the dbs version number")),
		activeList:   key.NewBinding(key.WithKeys("A", "shift+a"), key.WithHelp("A", "List all active tasks")),
		doneList:     key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "List all done tasks")),
		openList:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl-O", "List all open tasks")),
		deletedList:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl-D", "List all deleted tasks")),
		allList:      key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl-A", "List ALL tasks, in any state")),
		stateSummary: key.NewBinding(key.WithKeys("S", "shift+s"), key.WithHelp("S", "List project state counts")),
		toggleActive: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Toggle the current task between open and active")),
		markDone:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "Mark the current task done")),
		raise:        key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "Raise the current task priority")),
		lower:        key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "Lower the current task priority")),
		copyName:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "Copy the current task name")),
		enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("<Enter>", "Nothing; redraw")),
		submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save note")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// applyConfig applies configured key overrides.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.addNote, cfg.AddNote, "n", k.addNote.Help().Desc)
	configureBinding(&k.showTask, cfg.ShowTask, "s", k.showTask.Help().Desc)
	configureBinding(&k.refresh, cfg.Refresh, "ctrl+r", k.refresh.Help().Desc)
	configureBinding(&k.copyName, cfg.CopyName, "y", k.copyName.Help().Desc)
}

// boundAction pairs a binding with the action it triggers.
type boundAction struct {
	binding key.Binding
	action  action
}

// actions lists bindings in match order. Earlier entries win on overlap.
func (k keyMap) actions() []boundAction {
	return []boundAction{
		{k.quit, actionQuit},
		{k.help, actionHelp},
		{k.nextLine, actionNextLine},
		{k.prevLine, actionPrevLine},
		{k.nextPage, actionNextPage},
		{k.prevPage, actionPrevPage},
		{k.nextProject, actionNextProject},
		{k.prevProject, actionPrevProject},
		{k.refresh, actionRefresh},
		{k.showTask, actionShowTask},
		{k.addNote, actionAddNote},
		{k.version, actionVersion},
		{k.activeList, actionActiveList},
		{k.doneList, actionDoneList},
		{k.openList, actionOpenList},
		{k.deletedList, actionDeletedList},
		{k.allList, actionAllList},
		{k.stateSummary, actionStateSummary},
		{k.toggleActive, actionToggleActive},
		{k.markDone, actionMarkDone},
		{k.raise, actionRaisePriority},
		{k.lower, actionLowerPriority},
		{k.copyName, actionCopyName},
		{k.enter, actionNoop},
	}
}

// classify maps a key press to an action.
func (k keyMap) classify(msg tea.KeyPressMsg) (action, bool) {
	for _, b := range k.actions() {
		if key.Matches(msg, b.binding) {
			return b.action, true
		}
	}
	return actionNone, false
}

// helpEntries returns the help rows for every main-view binding.
func (k keyMap) helpEntries() []helpEntry {
	out := []helpEntry{{Key: k.forceQuit.Help().Key, Desc: k.forceQuit.Help().Desc}}
	for _, b := range k.actions() {
		h := b.binding.Help()
		out = append(out, helpEntry{Key: h.Key, Desc: h.Desc})
	}
	return out
}

// ShortHelp returns the bindings shown while a note is being typed.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.cancel}
}

// FullHelp returns the same bindings as ShortHelp.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// configureBinding replaces the keys of b from a configured value.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key list into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	keys := make([]string, 0, 2)
	labels := make([]string, 0, 1)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		labels = append(labels, part)
		switch {
		case strings.EqualFold(part, "space"):
			keys = append(keys, " ", "space")
		case utf8.RuneCountInString(part) == 1:
			r, _ := utf8.DecodeRuneInString(part)
			keys = append(keys, part)
			if unicode.IsUpper(r) {
				keys = append(keys, "shift+"+string(unicode.ToLower(r)))
			}
		default:
			keys = append(keys, strings.ToLower(part))
		}
	}
	if len(keys) == 0 {
		return []string{fallback}, fallback
	}
	return keys, strings.Join(labels, "/")
}
