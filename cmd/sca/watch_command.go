package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/ingest"
	"github.com/samiBendou/sca-automation/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Ingest captures as they land in the capture directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}

			w, err := watch.New(cfg.Paths.CaptureDir, ingest.New(cfg, store, logger), debounce, logger)
			if err != nil {
				return err
			}
			if err := w.Run(cmd.Context()); err != nil {
				return err
			}
			stats := w.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d captures (%d skipped, %d failed)\n",
				stats.Ingested, stats.Skipped, stats.Failed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a capture is ingested")
	return cmd
}
