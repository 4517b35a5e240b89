package main

import (
	"fmt"

	"github.com/phrazzld/careplan-api/internal/seed"
	"github.com/spf13/cobra"
)

// seedOptions holds flags for the seed command.
type seedOptions struct {
	*rootOptions
	File string
}

// newSeedCommand creates the seed command.
func newSeedCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &seedOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample providers, patients, orders and care plans",
		Long: `Load sample records into the configured database. Records that are
already present are skipped, so the command can run more than once.

Example:
  careplan-api seed
  careplan-api seed --file ./fixtures.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "YAML fixture file (default: built-in samples)")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *seedOptions) error {
	ctx := cmd.Context()

	cfg, logger, err := loadAppConfig(opts.rootOptions)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "memory" {
		logger.Warn("seeding in-memory storage has no effect after exit, use serve --seed instead")
	}

	fixtures, err := seed.Default()
	if opts.File != "" {
		fixtures, err = seed.LoadFile(opts.File)
	}
	if err != nil {
		return err
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing database connection", "error", err)
		}
	}()

	result, err := seed.NewSeeder(st.backend.Stores(), st.backend, logger).Apply(ctx, fixtures)
	if err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records, skipped %d already present\n",
		result.Created, result.Skipped)
	return nil
}
