package main

import (
	"context"

	"github.com/spf13/cobra"

	"profileplus/internal/bootstrap"
	"profileplus/internal/profiles"
	"profileplus/internal/shared/config"
)

var storeDriver string

// openStore is swapped in tests.
var openStore = bootstrap.OpenStore

var rootCmd = &cobra.Command{
	Use:   "profilectl",
	Short: "Inspect and seed the ProfilePlus profile store",
	Long: `profilectl reads the same key-value store as the API server. It lists
and shows stored profiles, prints the live preview slot and writes the
seed profile into an empty store.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "driver", "", "store driver override (memory, file, sqlite, postgres, redis, s3)")
}

// withStore opens the configured backend, runs fn and closes the backend.
func withStore(ctx context.Context, fn func(*profiles.Store) error) error {
	cfg := config.Load()
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}
	backend, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(profiles.NewStore(backend))
}
