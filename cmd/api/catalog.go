package main

import (
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/repository"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the menu catalogue",
	}

	var dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <file> [file...]",
		Short: "Import YAML seed files into the menu",
		Long: `Import reads one or more YAML seed documents, optionally gzipped, and
upserts their categories and items. When S3 is enabled each file is read
from the bucket under the configured prefix first, falling back to the
local path. Later files override earlier ones.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			fileLoader := catalog.NewFileLoader(logger)
			var s3Loader catalog.Loader
			if cfg.S3.Enabled {
				s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
				if err != nil {
					logger.Warn().Err(err).Msg("failed to initialise S3 loader, falling back to local file system only")
				}
			}
			loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

			merged, err := catalog.LoadAll(ctx, loader, args)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d categories, %d items validated\n", len(merged.Categories), len(merged.Items))
				return nil
			}

			pool, err := connect(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.NewMenuRepository(pool, logger).UpsertCatalog(ctx, merged); err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}

			logger.Info().
				Int("categories", len(merged.Categories)).
				Int("items", len(merged.Items)).
				Msg("catalog imported")
			return nil
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the files without writing to the database")

	cmd.AddCommand(importCmd)
	return cmd
}
