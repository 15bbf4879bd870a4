package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"profileplus/internal/profiles"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Inspect the live preview slot",
}

var previewShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current preview slot as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(store *profiles.Store) error {
			p := store.ReadPreview(cmd.Context())
			if p == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Preview slot is empty.")
				return nil
			}
			return printJSON(cmd, p)
		})
	},
}

func init() {
	previewCmd.AddCommand(previewShowCmd)
	rootCmd.AddCommand(previewCmd)
}
