package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/acquire"
	"github.com/samiBendou/sca-automation/internal/catalog"
	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/ingest"
	"github.com/samiBendou/sca-automation/internal/preflight"
	"github.com/samiBendou/sca-automation/internal/request"
)

type acquisitionFlags struct {
	name       string
	source     string
	iterations int
	chunks     int
	mode       string
	direction  string
	verbose    bool
	device     string
	bias       int
	appendRows bool
	noCompress bool
}

func (f *acquisitionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.name, "name", "n", "", "Dataset name prefix")
	flags.StringVarP(&f.source, "source", "s", "", "Acquisition source (file or serial)")
	flags.IntVarP(&f.iterations, "iterations", "t", 0, "Traces per chunk")
	flags.IntVar(&f.chunks, "chunks", 0, "Number of chunks to acquire and merge")
	flags.StringVarP(&f.mode, "mode", "m", "", "Encryption engine (hw or sw)")
	flags.StringVarP(&f.direction, "direction", "d", "", "Encryption direction (enc or dec)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Request raw sensor weights instead of compressed codes")
	flags.StringVar(&f.device, "device", "", "Serial device path")
	flags.IntVar(&f.bias, "bias", 0, "Hamming decode bias")
	flags.BoolVarP(&f.appendRows, "append", "a", false, "Append to an existing dataset")
	flags.BoolVar(&f.noCompress, "no-compress", false, "Store raw captures uncompressed")
}

// apply overrides cfg with the flags set on the command line.
func (f *acquisitionFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	a := &cfg.Acquisition
	if flags.Changed("name") {
		a.Name = f.name
	}
	if flags.Changed("source") {
		a.Source = strings.ToLower(strings.TrimSpace(f.source))
	}
	if flags.Changed("iterations") {
		a.Iterations = f.iterations
	}
	if flags.Changed("chunks") {
		a.Chunks = f.chunks
	}
	if flags.Changed("mode") {
		a.Mode = strings.ToLower(strings.TrimSpace(f.mode))
	}
	if flags.Changed("direction") {
		a.Direction = strings.ToLower(strings.TrimSpace(f.direction))
	}
	if flags.Changed("verbose") {
		a.Verbose = f.verbose
	}
	if flags.Changed("device") {
		a.Device = f.device
	}
	if flags.Changed("bias") {
		cfg.Decoder.HammingBias = f.bias
	}
	if flags.Changed("append") {
		cfg.Storage.Append = f.appendRows
	}
	if f.noCompress {
		cfg.Storage.CompressCaptures = false
	}
	return cfg.Validate()
}

func newAcquireCommand(ctx *commandContext) *cobra.Command {
	var flags acquisitionFlags

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire traces and save them as a dataset",
		Long: "Run the acquisition described by the [acquisition] section, chunk by chunk, " +
			"decode every capture and merge the result into the data directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				details := make([]string, 0, len(failed))
				for _, r := range failed {
					details = append(details, fmt.Sprintf("%s: %s", r.Name, r.Detail))
				}
				return fmt.Errorf("preflight failed: %s", strings.Join(details, "; "))
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			source, err := acquire.NewSource(cfg)
			if err != nil {
				return err
			}

			req := request.FromConfig(cfg)
			ing := ingest.New(cfg, store, logger)
			runner := &acquire.Runner{Source: source, Logger: logger}
			runErr := runner.Run(cmd.Context(), req, ing.Handler(req))

			runs, err := store.List(cmd.Context(), catalog.ListOptions{Base: req.Base(), Limit: req.ChunkCount()})
			if err != nil {
				return errors.Join(runErr, err)
			}
			slices.Reverse(runs)
			out := cmd.OutOrStdout()
			if len(runs) > 0 {
				fmt.Fprintln(out, renderRuns(runs, "Acquisition "+req.Base()))
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(out, "Dataset %s saved to %s\n", req.Base(), cfg.Paths.DataDir)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
