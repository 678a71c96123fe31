// Package debug provides a centralized, categorized debug logging system.
// Category logging is compiled in only with -tags debug; warnings are always emitted.
package debug

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Category represents a debug logging category
type Category string

const (
	APP     Category = "APP"     // Application orchestration, window lifecycle
	DRAG    Category = "DRAG"    // Drag orchestration state transitions
	OLE     Category = "OLE"     // Data object / drop source callbacks (verbose)
	CHANNEL Category = "CHANNEL" // Method channel and websocket bridge
	STAGING Category = "STAGING" // Temp file staging and sweeping
	CONFIG  Category = "CONFIG"  // Configuration loading
	UI      Category = "UI"      // Widgets and gesture handling
)

// Categories lists every category in display order.
var Categories = []Category{APP, DRAG, OLE, CHANNEL, STAGING, CONFIG, UI}

// ParseCategories reads a selection like "DRAG,OLE", "all" or "none" into the
// state of every category. Names are case-insensitive.
func ParseCategories(spec string) (map[Category]bool, error) {
	spec = strings.ToUpper(strings.TrimSpace(spec))
	cats := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		cats[c] = spec == "ALL"
	}
	if spec == "ALL" || spec == "NONE" {
		return cats, nil
	}
	for _, name := range strings.Split(spec, ",") {
		c := Category(strings.TrimSpace(name))
		if _, ok := cats[c]; !ok {
			return nil, fmt.Errorf("unknown debug category %q", string(c))
		}
		cats[c] = true
	}
	return cats, nil
}

var logger = newLogger()

func newLogger() zerolog.Logger {
	w := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Warn logs a message that is emitted in every build, for failures that are
// reported but not escalated (for example a temp file that could not be removed).
func Warn(cat Category, format string, args ...interface{}) {
	logger.Warn().Str("cat", string(cat)).Msgf(format, args...)
}
