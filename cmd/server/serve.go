package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phrazzld/careplan-api/internal/seed"
	"github.com/spf13/cobra"
)

// serveOptions holds flags for the serve command.
type serveOptions struct {
	*rootOptions
	Seed bool
}

// newServeCommand creates the serve command.
func newServeCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and generation workers",
		Long: `Start the care plan API.

Pending care plans left by a previous run are queued again on start, and plans
left processing are reset to pending first.

Example:
  careplan-api serve
  CAREPLAN_DATABASE_DRIVER=memory careplan-api serve --seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "load the sample records before serving")

	return cmd
}

func serve(ctx context.Context, opts *serveOptions) error {
	cfg, logger, err := loadAppConfig(opts.rootOptions)
	if err != nil {
		return err
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if opts.Seed {
		fixtures, err := seed.Default()
		if err != nil {
			_ = st.Close()
			return err
		}
		if _, err := seed.NewSeeder(st.backend.Stores(), st.backend, logger).Apply(ctx, fixtures); err != nil {
			_ = st.Close()
			return fmt.Errorf("failed to seed sample records: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, logger, st, nil)
	if err != nil {
		_ = st.Close()
		return err
	}
	return app.Run(ctx)
}
