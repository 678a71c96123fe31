package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/dragexport/internal/channel"
	"github.com/justyntemme/dragexport/internal/debug"
)

// sweepInterval is how often serve clears stale staged files.
const sweepInterval = time.Hour

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose startImageDrag to a local host app over websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				loadedCfg.Bridge.Listen = listen
			}

			stager, err := newStager(loadedCfg.Staging)
			if err != nil {
				return err
			}
			// Files arrive from the host app, which owns where they live.
			// They are deleted with os.Remove once the drag ends.
			orch, err := newDragOrchestrator(loadedCfg.Drag, nil)
			if err != nil {
				return err
			}
			srv := channel.NewServer(loadedCfg.Bridge.Channel, channel.NewHandler(orch))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(ctx, loadedCfg.Bridge.Listen)
			})
			g.Go(func() error {
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						sweep(stager, loadedCfg.Staging)
					}
				}
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "serving ws://%s%s\n", loadedCfg.Bridge.Listen, srv.Path())
			debug.Log(debug.APP, "allowed effects %v", loadedCfg.Drag.AllowedEffects)
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides bridge.listen)")
	return cmd
}
