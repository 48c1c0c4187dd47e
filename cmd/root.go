package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harryc904/Studio/internal/app"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "studio",
		Short:         "Conversation lineage and PRD revision API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newImportStandardsCmd(opts),
	)
	return root
}

// load reads config and builds the logger every subcommand shares.
func (o *rootOptions) load() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig(o.configPath)
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := logger.NewWithConfig(cfg.Log)
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
