//go:build !debug

package debug

// Enabled indicates whether debug logging is active
const Enabled = false

// Log is a no-op in release builds
func Log(cat Category, format string, args ...interface{}) {}

// EnableAll is a no-op in release builds
func EnableAll() {}

// SetCategories is a no-op in release builds
func SetCategories(cats map[Category]bool) {}

// ListEnabled returns nil in release builds
func ListEnabled() []Category { return nil }
