package config

import (
	"strings"

	"gioui.org/io/event"
	"gioui.org/io/key"
)

// Hotkey is one parsed window shortcut.
type Hotkey struct {
	Key       key.Name
	Modifiers key.Modifiers
}

// modifierNames maps the spellings accepted in config to Gio modifiers.
var modifierNames = map[string]key.Modifiers{
	"ctrl": key.ModCtrl, "control": key.ModCtrl,
	"shift": key.ModShift,
	"alt": key.ModAlt, "option": key.ModAlt,
	"cmd": key.ModCommand, "command": key.ModCommand,
	"super": key.ModSuper, "meta": key.ModSuper, "win": key.ModSuper, "windows": key.ModSuper,
}

// modifierOrder is the order modifiers are printed in.
var modifierOrder = []struct {
	mod  key.Modifiers
	name string
}{
	{key.ModCtrl, "Ctrl"},
	{key.ModCommand, "Cmd"},
	{key.ModShift, "Shift"},
	{key.ModAlt, "Alt"},
	{key.ModSuper, "Super"},
}

var keyNames = map[string]key.Name{
	"f1": key.NameF1, "f2": key.NameF2, "f3": key.NameF3, "f4": key.NameF4,
	"f5": key.NameF5, "f6": key.NameF6, "f7": key.NameF7, "f8": key.NameF8,
	"f9": key.NameF9, "f10": key.NameF10, "f11": key.NameF11, "f12": key.NameF12,

	"up": key.NameUpArrow, "uparrow": key.NameUpArrow,
	"down": key.NameDownArrow, "downarrow": key.NameDownArrow,
	"left": key.NameLeftArrow, "leftarrow": key.NameLeftArrow,
	"right": key.NameRightArrow, "rightarrow": key.NameRightArrow,
	"home": key.NameHome, "end": key.NameEnd,
	"pageup": key.NamePageUp, "pgup": key.NamePageUp,
	"pagedown": key.NamePageDown, "pgdn": key.NamePageDown, "pgdown": key.NamePageDown,

	"enter": key.NameReturn, "return": key.NameReturn,
	"tab": key.NameTab, "space": key.NameSpace, "spacebar": key.NameSpace,
	"backspace": key.NameDeleteBackward, "back": key.NameDeleteBackward,
	"delete": key.NameDeleteForward, "del": key.NameDeleteForward,
	"escape": key.NameEscape, "esc": key.NameEscape,
	"insert": "Insert", "ins": "Insert",
}

// Gio reports Shift+digit as the shifted symbol (US layout).
const (
	digits  = "1234567890"
	symbols = "!@#$%^&*()"
)

// ParseHotkey parses strings like "Ctrl+Shift+C". Unknown key names are kept
// as-is so platform specific names still work.
func ParseHotkey(s string) Hotkey {
	var h Hotkey
	if s == "" {
		return h
	}
	var name string
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		if m, ok := modifierNames[strings.ToLower(part)]; ok {
			h.Modifiers |= m
			continue
		}
		name = part
	}

	switch {
	case len(name) == 1:
		h.Key = key.Name(strings.ToUpper(name))
	case keyNames[strings.ToLower(name)] != "":
		h.Key = keyNames[strings.ToLower(name)]
	default:
		h.Key = key.Name(name)
	}

	if h.Modifiers.Contain(key.ModShift) {
		if i := strings.Index(digits, string(h.Key)); i >= 0 && len(h.Key) == 1 {
			h.Key = key.Name(symbols[i : i+1])
		}
	}
	return h
}

// Matches requires the exact modifier set, so Ctrl+C and Ctrl+Shift+C differ.
func (h Hotkey) Matches(k key.Event) bool {
	return h.Key != "" && k.Name == h.Key && k.Modifiers == h.Modifiers
}

func (h Hotkey) IsEmpty() bool { return h.Key == "" }

// String formats the hotkey for the hint line, printing digits rather than
// the symbols Gio reports for them.
func (h Hotkey) String() string {
	if h.Key == "" {
		return ""
	}
	var parts []string
	for _, m := range modifierOrder {
		if h.Modifiers.Contain(m.mod) {
			parts = append(parts, m.name)
		}
	}
	name := string(h.Key)
	if h.Modifiers.Contain(key.ModShift) && len(name) == 1 {
		if i := strings.Index(symbols, name); i >= 0 {
			name = digits[i : i+1]
		}
	}
	return strings.Join(append(parts, name), "+")
}

// Filter returns the key.Filter that delivers this hotkey to focus.
func (h Hotkey) Filter(focus event.Tag) key.Filter {
	return key.Filter{Focus: focus, Name: h.Key, Required: h.Modifiers}
}

// HotkeysConfig holds the window's shortcuts as strings like "Ctrl+Q".
type HotkeysConfig struct {
	Quit     string `toml:"quit"`
	Open     string `toml:"open"`
	Reload   string `toml:"reload"`
	CopyPath string `toml:"copy_path"`
	Cancel   string `toml:"cancel"`
}

// HotkeyMatcher is HotkeysConfig parsed once.
type HotkeyMatcher struct {
	Quit     Hotkey
	Open     Hotkey
	Reload   Hotkey
	CopyPath Hotkey
	Cancel   Hotkey
}

func NewHotkeyMatcher(cfg HotkeysConfig) *HotkeyMatcher {
	return &HotkeyMatcher{
		Quit:     ParseHotkey(cfg.Quit),
		Open:     ParseHotkey(cfg.Open),
		Reload:   ParseHotkey(cfg.Reload),
		CopyPath: ParseHotkey(cfg.CopyPath),
		Cancel:   ParseHotkey(cfg.Cancel),
	}
}

// All returns the configured hotkeys, skipping empty ones.
func (m *HotkeyMatcher) All() []Hotkey {
	var out []Hotkey
	for _, h := range []Hotkey{m.Quit, m.Open, m.Reload, m.CopyPath, m.Cancel} {
		if !h.IsEmpty() {
			out = append(out, h)
		}
	}
	return out
}

// Hint is the shortcut line shown under the preview, e.g.
// "F5 reload · Ctrl+Shift+C copy path · Ctrl+Q quit".
func (m *HotkeyMatcher) Hint() string {
	var parts []string
	for _, e := range []struct {
		h     Hotkey
		label string
	}{
		{m.Open, "open"},
		{m.Reload, "reload"},
		{m.CopyPath, "copy path"},
		{m.Quit, "quit"},
	} {
		if !e.h.IsEmpty() {
			parts = append(parts, e.h.String()+" "+e.label)
		}
	}
	return strings.Join(parts, " · ")
}
