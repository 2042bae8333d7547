package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/samiBendou/sca-automation/internal/codec"
	"github.com/samiBendou/sca-automation/internal/export"
	"github.com/samiBendou/sca-automation/internal/keywords"
)

const previewSamples = 8

func newShowCommand(ctx *commandContext) *cobra.Command {
	var start int
	var count int
	var leak bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show [dataset]",
		Short: "Display a saved dataset or list datasets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names, err := listDatasets(cfg.Paths.DataDir)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintf(out, "No datasets in %s\n", cfg.Paths.DataDir)
					return nil
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			base := args[0]
			ds, err := export.Load(cfg.Paths.DataDir, base, codec.ReadOptions{Start: start, Count: count})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd, ds)
			}
			if ds.Meta.Iterations == 0 && ds.Channel.Len() == 0 {
				return fmt.Errorf("dataset %s not found in %s", base, cfg.Paths.DataDir)
			}

			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader(base, colorize))
			fmt.Fprintln(out, renderStatusLine("Engine", statusInfo, string(ds.Meta.Mode), colorize))
			fmt.Fprintln(out, renderStatusLine("Direction", statusInfo, directionLabel(ds.Meta.Direction), colorize))
			fmt.Fprintln(out, renderStatusLine("Iterations", statusInfo, strconv.Itoa(ds.Meta.Iterations), colorize))
			fmt.Fprintln(out, renderStatusLine("Sensors", statusInfo, strconv.Itoa(ds.Meta.Sensors), colorize))
			fmt.Fprintln(out, renderStatusLine("Target", statusInfo, strconv.Itoa(ds.Meta.Target), colorize))
			fmt.Fprintln(out, renderStatusLine("Offset", statusInfo, strconv.Itoa(ds.Meta.Offset), colorize))
			fmt.Fprintln(out, renderRecords(ds, start, leak))
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "First record to display")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of records to display (0 shows all)")
	cmd.Flags().BoolVar(&leak, "leak", false, "Include a preview of each trace")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func renderRecords(ds *export.Dataset, start int, leak bool) string {
	title := cases.Title(language.English)
	headers := []string{"#", title.String(keywords.Plain.String()), title.String(keywords.Cipher.String()), title.String(keywords.Key.String())}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}
	if leak {
		headers = append(headers, title.String(keywords.Samples.String()), "Trace")
		aligns = append(aligns, alignRight, alignLeft)
	}

	rows := make([][]string, 0, ds.Channel.Len())
	for i := 0; i < ds.Channel.Len(); i++ {
		plain, cipher, key := ds.Channel.At(i)
		row := []string{strconv.Itoa(start + i), plain, cipher, key}
		if leak {
			samples, preview := "", ""
			if i < ds.Leak.Len() {
				samples = strconv.Itoa(ds.Leak.Samples[i])
				preview = previewTrace(ds.Leak.Traces[i])
			}
			row = append(row, samples, preview)
		}
		rows = append(rows, row)
	}
	return renderTable(tableSpec{
		headers: headers,
		aligns:  aligns,
		rows:    rows,
		footer:  []string{"", fmt.Sprintf("%d records", len(rows))},
	})
}

func previewTrace(trace []int) string {
	n := min(len(trace), previewSamples)
	parts := make([]string, 0, n+1)
	for _, v := range trace[:n] {
		parts = append(parts, strconv.Itoa(v))
	}
	if len(trace) > n {
		parts = append(parts, "…")
	}
	return strings.Join(parts, " ")
}

func listDatasets(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+export.MetaSuffix))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && info.Mode().IsRegular() {
			names = append(names, strings.TrimSuffix(filepath.Base(match), export.MetaSuffix))
		}
	}
	sort.Strings(names)
	return names, nil
}
