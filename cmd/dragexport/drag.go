package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/dragexport/internal/dragdrop"
)

func newDragCmd() *cobra.Command {
	var originX, originY float64

	cmd := &cobra.Command{
		Use:   "drag <file>",
		Short: "Drag a copy of a file from the current cursor position",
		Long: `Stages a copy of the file and starts a native drag of the copy. The
command returns when the drop completes or is cancelled and prints the effect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stager, err := newStager(loadedCfg.Staging)
			if err != nil {
				return err
			}
			orch, err := newDragOrchestrator(loadedCfg.Drag, stager.Remove)
			if err != nil {
				return err
			}

			staged, err := stager.StageFile(args[0])
			if err != nil {
				return err
			}
			out, err := orch.StartDrag(dragdrop.DragRequest{Path: staged, OriginX: originX, OriginY: originY})
			if out.CleanupErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", out.CleanupErr)
			}
			if err != nil {
				return fmt.Errorf("drag %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Kind)
			return nil
		},
	}

	cmd.Flags().Float64Var(&originX, "x", 0, "drag origin x, informational")
	cmd.Flags().Float64Var(&originY, "y", 0, "drag origin y, informational")
	return cmd
}
