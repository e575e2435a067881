package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := context.Background()
			repo, err := initPostgresRepo(ctx, cfg.Database.PostgresDSN, false)
			if err != nil {
				return err
			}
			defer closeRepo(repo)

			if err := repo.Migrate(ctx); err != nil {
				logger.Log.Error("Migration failed", zap.Error(err))
				return err
			}
			logger.Log.Info("Migration complete")
			return nil
		},
	}
}
