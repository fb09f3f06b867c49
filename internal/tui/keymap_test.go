package tui

import (
	"slices"
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/dbs/internal/config"
)

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	t.Run("space aliases", func(t *testing.T) {
		keys, help := parseBindingKeys("space", ".")
		if len(keys) != 2 || keys[0] != " " || keys[1] != "space" {
			t.Fatalf("unexpected parsed space keys %#v", keys)
		}
		if help != "space" {
			t.Fatalf("unexpected space help text %q", help)
		}
	})

	t.Run("uppercase rune includes shift alias", func(t *testing.T) {
		keys, help := parseBindingKeys("Z", "z")
		if len(keys) != 2 || keys[0] != "Z" || keys[1] != "shift+z" {
			t.Fatalf("unexpected uppercase parsed keys %#v", keys)
		}
		if help != "Z" {
			t.Fatalf("unexpected uppercase help text %q", help)
		}
	})

	t.Run("multi rune lowercases key matcher", func(t *testing.T) {
		keys, help := parseBindingKeys("Ctrl+R", "r")
		if len(keys) != 1 || keys[0] != "ctrl+r" {
			t.Fatalf("unexpected multi-rune parsed keys %#v", keys)
		}
		if help != "Ctrl+R" {
			t.Fatalf("unexpected multi-rune help text %q", help)
		}
	})

	t.Run("blank uses fallback", func(t *testing.T) {
		keys, help := parseBindingKeys("", "x")
		if len(keys) != 1 || keys[0] != "x" {
			t.Fatalf("unexpected fallback parsed keys %#v", keys)
		}
		if help != "x" {
			t.Fatalf("unexpected fallback help text %q", help)
		}
	})
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "old"))
	configureBinding(&b, "i, N", "n", "add note")
	keys := b.Keys()
	if len(keys) != 3 || keys[0] != "i" || keys[1] != "N" || keys[2] != "shift+n" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "i/N" || b.Help().Desc != "add note" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{
		AddNote:  "i",
		ShowTask: "F2",
		CopyName: "Y",
	})

	assertKeys := func(name string, binding key.Binding, expected ...string) {
		t.Helper()
		got := binding.Keys()
		if len(got) != len(expected) {
			t.Fatalf("%s key count mismatch got=%#v expected=%#v", name, got, expected)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s key mismatch got=%#v expected=%#v", name, got, expected)
			}
		}
	}

	assertKeys("add note", k.addNote, "i")
	assertKeys("show task", k.showTask, "f2")
	assertKeys("refresh", k.refresh, "ctrl+r")
	assertKeys("copy name", k.copyName, "Y", "shift+y")
	if k.addNote.Help().Desc != "Add a note to the current task" {
		t.Fatalf("expected description kept, got %q", k.addNote.Help().Desc)
	}
}

// TestKeyMapClassify verifies key presses resolve to actions.
func TestKeyMapClassify(t *testing.T) {
	k := newKeyMap()
	tests := []struct {
		name string
		msg  tea.KeyPressMsg
		want action
	}{
		{name: "quit", msg: tea.KeyPressMsg{Code: 'q', Text: "q"}, want: actionQuit},
		{name: "down arrow", msg: tea.KeyPressMsg{Code: tea.KeyDown}, want: actionNextLine},
		{name: "next project", msg: tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}, want: actionNextProject},
		{name: "add note", msg: tea.KeyPressMsg{Code: 'n', Text: "n"}, want: actionAddNote},
		{name: "done list", msg: tea.KeyPressMsg{Code: 'D', Text: "D"}, want: actionDoneList},
		{name: "deleted list", msg: tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl}, want: actionDeletedList},
		{name: "page down", msg: tea.KeyPressMsg{Code: tea.KeyPgDown}, want: actionNextPage},
		{name: "enter redraws", msg: tea.KeyPressMsg{Code: tea.KeyEnter}, want: actionNoop},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := k.classify(tc.msg)
			if !ok || got != tc.want {
				t.Fatalf("classify(%s) = %d, %v; want %d", tc.msg.String(), got, ok, tc.want)
			}
		})
	}
	if _, ok := k.classify(tea.KeyPressMsg{Code: 'z', Text: "z"}); ok {
		t.Fatal("expected z to be unbound")
	}
}

// TestKeyMapHelpEntries verifies every main-view binding is listed.
func TestKeyMapHelpEntries(t *testing.T) {
	k := newKeyMap()
	entries := k.helpEntries()
	if len(entries) != len(k.actions())+1 {
		t.Fatalf("expected %d entries, got %d", len(k.actions())+1, len(entries))
	}
	if entries[0].Key != "ctrl-C" {
		t.Fatalf("expected force quit first, got %#v", entries[0])
	}
}

// TestKeyMapFixedBindingsAreReserved verifies config validation knows every fixed key,
// so a validated override can never shadow or be shadowed by a fixed binding.
func TestKeyMapFixedBindingsAreReserved(t *testing.T) {
	k := newKeyMap()
	rebindable := []action{actionAddNote, actionShowTask, actionRefresh, actionCopyName}
	fixed := []key.Binding{k.forceQuit, k.cancel}
	for _, b := range k.actions() {
		if !slices.Contains(rebindable, b.action) {
			fixed = append(fixed, b.binding)
		}
	}
	for _, b := range fixed {
		for _, name := range b.Keys() {
			if !slices.Contains(config.ReservedKeys, name) {
				t.Fatalf("fixed key %q (%s) missing from config.ReservedKeys", name, b.Help().Desc)
			}
		}
	}
}

// TestKeyMapValidatedOverridesStayReachable verifies every action still classifies after a valid rebind.
func TestKeyMapValidatedOverridesStayReachable(t *testing.T) {
	cfg := config.Default("/tmp/dbs", "/tmp/dbs.db")
	cfg.Keys.AddNote = "i"
	cfg.Keys.ShowTask = "n"
	cfg.Keys.Refresh = "R"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	k := newKeyMap()
	k.applyConfig(KeyConfig{
		AddNote:  cfg.Keys.AddNote,
		ShowTask: cfg.Keys.ShowTask,
		Refresh:  cfg.Keys.Refresh,
		CopyName: cfg.Keys.CopyName,
	})
	tests := []struct {
		msg  tea.KeyPressMsg
		want action
	}{
		{msg: tea.KeyPressMsg{Code: 'i', Text: "i"}, want: actionAddNote},
		{msg: tea.KeyPressMsg{Code: 'n', Text: "n"}, want: actionShowTask},
		{msg: tea.KeyPressMsg{Code: 'R', Text: "R"}, want: actionRefresh},
		{msg: tea.KeyPressMsg{Code: 'y', Text: "y"}, want: actionCopyName},
		{msg: tea.KeyPressMsg{Code: 'j', Text: "j"}, want: actionNextLine},
		{msg: tea.KeyPressMsg{Code: 'q', Text: "q"}, want: actionQuit},
	}
	for _, tc := range tests {
		got, ok := k.classify(tc.msg)
		if !ok || got != tc.want {
			t.Fatalf("classify(%s) = %d, %v; want %d", tc.msg.String(), got, ok, tc.want)
		}
	}
}
