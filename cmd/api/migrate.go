package main

import (
	"fmt"

	"storefront/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			pool, err := connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}

			logger.Info().Str("database", cfg.Database.Database).Msg("schema applied")
			return nil
		},
	}
}
