package main

import (
	"github.com/spf13/cobra"

	"github.com/harryc904/Studio/internal/app"
	"github.com/harryc904/Studio/internal/platform/shutdown"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(cmd.Context())
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	if err := a.Run(ctx); err != nil {
		log.Error("server exited", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
