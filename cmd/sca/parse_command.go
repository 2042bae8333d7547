package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/ingest"
	"github.com/samiBendou/sca-automation/internal/parser"
	"github.com/samiBendou/sca-automation/internal/request"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "parse [capture...]",
		Short: "Decode stored captures into datasets",
		Long: "Decode the given capture files, or every capture in the capture directory, " +
			"and merge them into the dataset named by each file. Captures already in the " +
			"catalog are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths := args
			if len(paths) == 0 {
				paths, err = listCaptures(cfg.Paths.CaptureDir)
				if err != nil {
					return err
				}
			}
			if len(paths) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No captures in %s\n", cfg.Paths.CaptureDir)
				return nil
			}
			if dryRun {
				return dryRunCaptures(cmd, cfg, paths)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			ing := ingest.New(cfg, store, logger)

			out := cmd.OutOrStdout()
			var failures []error
			for _, path := range paths {
				outcome, err := ing.IngestCapture(cmd.Context(), path)
				switch {
				case errors.Is(err, ingest.ErrAlreadyIngested):
					fmt.Fprintf(out, "%s: skipped, already ingested as run %s\n", filepath.Base(path), shortID(outcome.Run.ID))
				case err != nil:
					fmt.Fprintf(out, "%s: failed: %v\n", filepath.Base(path), err)
					failures = append(failures, fmt.Errorf("%s: %w", filepath.Base(path), err))
				default:
					fmt.Fprintf(out, "%s: %d traces, %d warnings -> %s (%d iterations)\n",
						filepath.Base(path), outcome.Result.Len(), len(outcome.Warnings),
						outcome.Saved.Base, outcome.Saved.Stored.Iterations)
				}
			}
			return errors.Join(failures...)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decode and report without saving")
	return cmd
}

// dryRunCaptures decodes each capture and prints its warnings. Captures with
// an unrecognized name are decoded with the configured acquisition settings.
func dryRunCaptures(cmd *cobra.Command, cfg *config.Config, paths []string) error {
	out := cmd.OutOrStdout()
	for _, path := range paths {
		raw, err := capture.Read(path)
		if err != nil {
			return err
		}
		req, _, err := request.ParseCaptureName(path)
		if err != nil {
			req = request.FromConfig(cfg)
		}
		res, warnings := parser.Decode(raw, parser.Options{
			Direction: req.Direction,
			Verbose:   cfg.Acquisition.Verbose,
			Bias:      cfg.Decoder.HammingBias,
		})
		fmt.Fprintf(out, "%s: %d traces, %d warnings, %d lines, state %s\n",
			filepath.Base(path), res.Len(), len(warnings), res.Lines, res.State)
		for _, w := range warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}
	return nil
}

func listCaptures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list captures: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !capture.IsCapture(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func directionLabel(d dataset.Direction) string {
	if d.Inverse() {
		return "decrypt"
	}
	return "encrypt"
}
