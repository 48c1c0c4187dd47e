package main

import (
	"github.com/spf13/cobra"

	"github.com/harryc904/Studio/internal/app"
	"github.com/harryc904/Studio/internal/data/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			pools, err := app.OpenStores(cfg, log)
			if err != nil {
				return err
			}
			defer pools.Close()

			if err := db.AutoMigrateAll(pools, log); err != nil {
				return err
			}
			log.Info("migration complete", "shared_pool", pools.Shared())
			return nil
		},
	}
}
