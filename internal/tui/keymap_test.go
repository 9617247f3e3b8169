package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestDefaultKeyMap_Dispatch checks that every key the dashboard reacts to
// matches exactly one binding.
func TestDefaultKeyMap_Dispatch(t *testing.T) {
	km := DefaultKeyMap()
	named := map[string]key.Binding{
		"quit": km.Quit, "pause": km.Pause, "restart": km.Reset,
		"up": km.Up, "down": km.Down, "pgup": km.PageUp, "pgdown": km.PageDown,
	}

	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{runeKey("q"), "quit"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "quit"},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, "pause"},
		{runeKey("p"), "pause"},
		{runeKey("r"), "restart"},
		{tea.KeyMsg{Type: tea.KeyUp}, "up"},
		{runeKey("k"), "up"},
		{tea.KeyMsg{Type: tea.KeyDown}, "down"},
		{runeKey("j"), "down"},
		{tea.KeyMsg{Type: tea.KeyPgUp}, "pgup"},
		{tea.KeyMsg{Type: tea.KeyPgDown}, "pgdown"},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			var matched []string
			for name, b := range named {
				if key.Matches(tt.msg, b) {
					matched = append(matched, name)
				}
			}
			if len(matched) != 1 || matched[0] != tt.want {
				t.Errorf("%q matched %v, want only %s", tt.msg.String(), matched, tt.want)
			}
		})
	}

	if key.Matches(runeKey("x"), km.Quit, km.Pause, km.Reset, km.Up, km.Down) {
		t.Error("an unbound key should match nothing")
	}
}

func TestDefaultKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	short := map[string]bool{}
	for _, b := range km.ShortHelp() {
		short[b.Help().Desc] = true
	}
	if short["page up"] || short["page down"] {
		t.Error("paging belongs in the full help only")
	}
	if !short["restart"] || !short["quit"] {
		t.Errorf("short help = %v, want quit and restart", short)
	}

	seen := map[string]int{}
	for _, col := range km.FullHelp() {
		for _, b := range col {
			seen[b.Help().Desc]++
		}
	}
	for _, desc := range []string{"quit", "pause", "restart", "scroll up", "scroll down", "page up", "page down"} {
		if seen[desc] != 1 {
			t.Errorf("full help lists %q %d times, want once", desc, seen[desc])
		}
	}
}
