package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"profileplus/internal/profiles"
)

var showPublic bool

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Read stored profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

func init() {
	profilesShowCmd.Flags().BoolVar(&showPublic, "public", false, "render the anonymous recruiter view")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(store *profiles.Store) error {
		catalog := profiles.NewCatalog(cmd.Context(), store)
		list := catalog.List()
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tTIER\tCV")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", p.ID, p.Name, p.Role, p.Tier, p.HasCVFile)
		}
		return w.Flush()
	})
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(store *profiles.Store) error {
		p, ok := profiles.NewCatalog(cmd.Context(), store).Get(args[0])
		if !ok {
			return fmt.Errorf("profile %q: %w", args[0], profiles.ErrNotFound)
		}
		var out any = p
		if showPublic {
			out = profiles.ToPublic(p, false)
		}
		return printJSON(cmd, out)
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
