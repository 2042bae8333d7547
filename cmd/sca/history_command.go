package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/samiBendou/sca-automation/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var base string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded acquisition runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			runs, err := store.List(cmd.Context(), catalog.ListOptions{Base: base, Limit: limit})
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []*catalog.Run{}
				}
				return printJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs, ""))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs (0 lists all)")
	cmd.Flags().StringVarP(&base, "base", "b", "", "Only list runs of this dataset")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func renderRuns(runs []*catalog.Run, title string) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		requested := "?"
		if run.Requested > 0 {
			requested = strconv.Itoa(run.Requested)
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.CreatedAt.Local().Format(time.DateTime),
			run.Base,
			strconv.Itoa(run.Chunk + 1),
			fmt.Sprintf("%d/%s", run.Parsed, requested),
			strconv.Itoa(run.Warnings),
			string(run.Status),
			shortDigest(run.Digest),
		})
	}
	return renderTable(tableSpec{
		title:   title,
		headers: []string{"Run", "Created", "Dataset", "Chunk", "Traces", "Warnings", "Status", "Digest"},
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
		rows:    rows,
	})
}

// shortID keeps the random tail of a time-ordered run ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
