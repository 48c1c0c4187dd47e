package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harryc904/Studio/internal/app"
	"github.com/harryc904/Studio/internal/data/db"
	"github.com/harryc904/Studio/internal/data/repos"
	"github.com/harryc904/Studio/internal/services"
)

func newImportStandardsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-standards <file>",
		Short: "Load a YAML or JSON standards document into the business store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			pools, err := app.OpenStores(cfg, log)
			if err != nil {
				return err
			}
			defer pools.Close()
			if err := db.AutoMigrateBusiness(pools.Business); err != nil {
				return fmt.Errorf("migrate business store: %w", err)
			}

			svc := services.NewStandardService(pools.Business, log, repos.NewStandardRepo(pools.Business, log))
			n, err := svc.ImportDocument(cmd.Context(), f)
			if err != nil {
				return err
			}
			log.Info("standards imported", "file", args[0], "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d standards\n", n)
			return nil
		},
	}
}
