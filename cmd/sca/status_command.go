package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/catalog"
	"github.com/samiBendou/sca-automation/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, the device and the run catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			configMessage := ctx.configPath
			if !ctx.configExists {
				configMessage += " (defaults)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configMessage, colorize))
			fmt.Fprintln(out, renderStatusLine("Source", statusInfo, cfg.Acquisition.Source, colorize))

			fmt.Fprintln(out, renderSectionHeader("Checks", colorize))
			results := preflight.RunAll(cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			fmt.Fprintln(out, renderSectionHeader("Catalog", colorize))
			store, err := ctx.openCatalog()
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
				return nil
			}
			summary, err := store.Summary(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Database", statusOK, store.Path(), colorize))
			fmt.Fprintln(out, renderStatusLine("Datasets", statusInfo, strconv.Itoa(summary.Datasets), colorize))
			fmt.Fprintln(out, renderStatusLine("Traces", statusInfo, strconv.Itoa(summary.Traces), colorize))
			runKind := statusInfo
			if summary.ByStatus[catalog.StatusFailed] > 0 {
				runKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Runs", runKind, fmt.Sprintf("%d (%d complete, %d partial, %d failed)",
				summary.Runs,
				summary.ByStatus[catalog.StatusComplete],
				summary.ByStatus[catalog.StatusPartial],
				summary.ByStatus[catalog.StatusFailed],
			), colorize))
			if summary.Last != nil {
				fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, summary.Last.Local().Format(time.DateTime), colorize))
			}
			return nil
		},
	}
}
