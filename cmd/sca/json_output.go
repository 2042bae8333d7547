package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// printJSON writes v to the command output as one indented document, with
// '<', '>' and '&' left unescaped.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
