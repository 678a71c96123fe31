package config

import (
	"testing"

	"gioui.org/io/key"
	"github.com/stretchr/testify/assert"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in   string
		want Hotkey
	}{
		{"", Hotkey{}},
		{"Ctrl+Q", Hotkey{Key: "Q", Modifiers: key.ModCtrl}},
		{"ctrl+shift+c", Hotkey{Key: "C", Modifiers: key.ModCtrl | key.ModShift}},
		{"F5", Hotkey{Key: key.NameF5}},
		{"Esc", Hotkey{Key: key.NameEscape}},
		{"Cmd+R", Hotkey{Key: "R", Modifiers: key.ModCommand}},
		{"Shift+1", Hotkey{Key: "!", Modifiers: key.ModShift}},
		{"Win + PgDn", Hotkey{Key: key.NamePageDown, Modifiers: key.ModSuper}},
		{"Alt+Insert", Hotkey{Key: "Insert", Modifiers: key.ModAlt}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHotkey(tt.in))
		})
	}
}

func TestHotkeyString(t *testing.T) {
	assert.Equal(t, "Ctrl+Shift+C", ParseHotkey("Ctrl+Shift+C").String())
	assert.Equal(t, "Shift+1", ParseHotkey("Shift+1").String())
	assert.Equal(t, "", Hotkey{}.String())
}

func TestHotkeyMatches(t *testing.T) {
	h := ParseHotkey("Ctrl+Q")
	assert.True(t, h.Matches(key.Event{Name: "Q", Modifiers: key.ModCtrl}))
	assert.False(t, h.Matches(key.Event{Name: "Q", Modifiers: key.ModCtrl | key.ModShift}))
	assert.False(t, Hotkey{}.Matches(key.Event{Name: "Q"}))
}

func TestHotkeyMatcherAll(t *testing.T) {
	m := NewHotkeyMatcher(HotkeysConfig{Quit: "Ctrl+Q", Cancel: "Escape"})
	assert.Len(t, m.All(), 2)
	assert.Len(t, NewHotkeyMatcher(DefaultHotkeys()).All(), 5)
}

func TestHotkeyMatcherHint(t *testing.T) {
	m := NewHotkeyMatcher(HotkeysConfig{Open: "Ctrl+O", Reload: "F5", CopyPath: "Ctrl+Shift+C", Cancel: "Escape"})
	assert.Equal(t, "Ctrl+O open · F5 reload · Ctrl+Shift+C copy path", m.Hint())
	assert.Equal(t, "", NewHotkeyMatcher(HotkeysConfig{Cancel: "Escape"}).Hint())
}
