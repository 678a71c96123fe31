//go:build debug

package debug

import (
	"os"
	"sync"
)

// Enabled indicates whether debug logging is active
const Enabled = true

var (
	// OLE callbacks fire on every mouse move, so they start disabled.
	enabledCategories = map[Category]bool{
		APP:     true,
		DRAG:    true,
		CHANNEL: true,
		STAGING: true,
		CONFIG:  true,
		UI:      true,
		OLE:     false,
	}
	categoryMu sync.RWMutex
)

func init() {
	// DRAGEXPORT_DEBUG=DRAG,OLE or all or none
	env := os.Getenv("DRAGEXPORT_DEBUG")
	if env == "" {
		return
	}
	cats, err := ParseCategories(env)
	if err != nil {
		Warn(APP, "DRAGEXPORT_DEBUG: %v", err)
		return
	}
	SetCategories(cats)
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	logger.Debug().Str("cat", string(cat)).Msgf(format, args...)
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}

// SetCategories sets the enabled state for multiple categories
func SetCategories(cats map[Category]bool) {
	categoryMu.Lock()
	for cat, enabled := range cats {
		enabledCategories[cat] = enabled
	}
	categoryMu.Unlock()
}

// ListEnabled returns the enabled categories in display order
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for _, cat := range Categories {
		if enabledCategories[cat] {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}
