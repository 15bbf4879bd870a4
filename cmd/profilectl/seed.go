package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"profileplus/internal/profiles"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the seed profile into the store",
	Long:  `Write the built-in seed profile into the stored mapping. An existing record with the same id is left alone unless --force is set.`,
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite an existing record with the seed id")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(store *profiles.Store) error {
		seed := profiles.SeedProfile()
		// The mapping is written back whole, so an unreadable one must stop
		// the seed rather than be replaced. A corrupt one may be replaced
		// with --force.
		all, err := store.LoadProfilesStrict(cmd.Context())
		switch {
		case errors.Is(err, profiles.ErrCorruptProfiles) && seedForce:
			fmt.Fprintln(cmd.ErrOrStderr(), "Stored profiles are corrupt; replacing them with the seed.")
			all = map[string]profiles.Profile{}
		case err != nil:
			return fmt.Errorf("load profiles: %w", err)
		}
		if _, exists := all[seed.ID]; exists && !seedForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %s already stored; use --force to overwrite.\n", seed.ID)
			return nil
		}
		all[seed.ID] = seed
		if err := store.SaveAllProfiles(cmd.Context(), all); err != nil {
			return fmt.Errorf("save profiles: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded profile %s.\n", seed.ID)
		return nil
	})
}
