package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/cropadvisor/internal/farm"
)

var contextJSON bool

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the farm context the advisor currently sees",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		store := NewStore(ctx)
		defer store.Close(ctx)

		snapshot := farm.Build(ctx, store.Settings)
		out := cmd.OutOrStdout()

		if contextJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		}

		_, err := fmt.Fprintln(out, farm.BuildPrompt(snapshot, false))
		return err
	},
}

func init() {
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "print the snapshot as JSON")
	rootCmd.AddCommand(contextCmd)
}
