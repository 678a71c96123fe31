//go:build darwin

package config

// DefaultHotkeys returns the default keyboard shortcuts for macOS
// Uses Cmd instead of Ctrl (macOS convention)
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		Quit:     "Cmd+Q",
		Open:     "Enter",
		Reload:   "Cmd+R",
		CopyPath: "Cmd+Shift+C",
		Cancel:   "Escape",
	}
}
