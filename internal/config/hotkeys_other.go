//go:build !darwin

package config

// DefaultHotkeys returns the default keyboard shortcuts for Windows/Linux
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		Quit:     "Ctrl+Q",
		Open:     "Enter",
		Reload:   "F5",
		CopyPath: "Ctrl+Shift+C",
		Cancel:   "Escape",
	}
}
