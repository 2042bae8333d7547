package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/export"
	"github.com/samiBendou/sca-automation/internal/logging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove session logs or datasets",
	}
	cleanCmd.AddCommand(newCleanLogsCommand(ctx))
	cleanCmd.AddCommand(newCleanDatasetCommand(ctx))
	return cleanCmd
}

func newCleanLogsCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Delete session logs older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Logging.RetentionDays
			}
			if days <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Log retention disabled; nothing removed")
				return nil
			}
			removed := logging.CleanupOldLogs(logging.Discard(), days, cfg.Paths.LogDir, logging.SessionPattern)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session logs older than %d days\n", removed, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (defaults to logging.retention_days)")
	return cmd
}

func newCleanDatasetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dataset <name>",
		Short: "Delete a dataset, its archived captures and its runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			base := args[0]
			paths := export.PathsFor(cfg.Paths.DataDir, base)
			targets := []string{paths.Channel, paths.Leak, paths.Meta}
			archived, err := filepath.Glob(filepath.Join(cfg.Paths.DataDir, base+"*"))
			if err != nil {
				return err
			}
			for _, path := range archived {
				if capture.IsCapture(path) && isCaptureOf(base, path) {
					targets = append(targets, path)
				}
			}

			removed := 0
			for _, path := range targets {
				if err := os.Remove(path); err != nil {
					if errors.Is(err, fs.ErrNotExist) {
						continue
					}
					return fmt.Errorf("remove %s: %w", path, err)
				}
				removed++
			}

			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			runs, err := store.Remove(cmd.Context(), base)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files and %d runs of %s\n", removed, runs, base)
			return nil
		},
	}
}

// isCaptureOf reports whether path is <base>.log or <base>_<n>.log, with or
// without compression.
func isCaptureOf(base, path string) bool {
	name := capture.Base(path)
	if name == base {
		return true
	}
	rest, ok := strings.CutPrefix(name, base+"_")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
