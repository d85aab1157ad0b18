package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persistorai/speedrun/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the vertex and edge tables",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			log := newLogger(cfg, cmd.ErrOrStderr())

			pool, err := openPool(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.RunMigrations(cmd.Context(), pool, log); err != nil {
				return err
			}

			version, err := db.CurrentVersion(cmd.Context(), pool)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)

			return nil
		},
	}
}
