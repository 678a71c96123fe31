package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/dragexport/internal/config"
	"github.com/justyntemme/dragexport/internal/debug"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath      string
	flagDebug           bool
	flagDebugCategories string
)

// loadedCfg holds the configuration read by PersistentPreRunE. cfgErr is a
// parse error that fell back to defaults; the window shows it in a banner.
var (
	loadedCfg config.Config
	cfgErr    error
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dragexport",
		Short:   "Drag a file out to the Windows shell",
		Long:    "Starts native drag-and-drop of a single file so it can be dropped into Explorer, mail clients or chat apps.",
		Version: version,
		// Silence Cobra's default error/usage printing; main prints the error.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyDebugFlags(); err != nil {
				return err
			}
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default ~/.config/dragexport/config.toml)")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "keep the console open; in builds with -tags debug also log every category")
	cmd.PersistentFlags().StringVar(&flagDebugCategories, "debug-categories", "", "debug categories to log, e.g. DRAG,OLE or all (needs -tags debug)")

	cmd.AddCommand(newWindowCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDragCmd())

	return cmd
}

// applyDebugFlags turns on debug categories. --debug-categories wins over
// --debug when both are given.
func applyDebugFlags() error {
	if flagDebug {
		debug.EnableAll()
	}
	if flagDebugCategories != "" {
		cats, err := debug.ParseCategories(flagDebugCategories)
		if err != nil {
			return fmt.Errorf("--debug-categories: %w", err)
		}
		debug.SetCategories(cats)
	}
	if debug.Enabled {
		debug.Log(debug.APP, "debug categories: %v", debug.ListEnabled())
	}
	return nil
}

func loadConfig() error {
	m := config.NewManager()
	if flagConfigPath != "" {
		m = config.NewManagerAt(flagConfigPath)
	}
	if err := m.Load(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	loadedCfg = m.Get()
	cfgErr = m.ParseError()
	if cfgErr != nil {
		debug.Warn(debug.CONFIG, "%s: %v (using defaults)", m.Path(), cfgErr)
	}
	return nil
}
