package main

import (
	"github.com/spf13/cobra"

	"github.com/justyntemme/dragexport/internal/app"
)

func newWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window <file>",
		Short: "Open a small window whose preview can be dragged out",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			stager, err := newStager(loadedCfg.Staging)
			if err != nil {
				return err
			}
			orch, err := newDragOrchestrator(loadedCfg.Drag, stager.Remove)
			if err != nil {
				return err
			}

			manageConsole(flagDebug)
			app.Main(loadedCfg, cfgErr, app.NewExporter(stager, orch), args[0])
			return nil
		},
	}
}
