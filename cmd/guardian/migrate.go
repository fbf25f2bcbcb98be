package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"coin-guardian/internal/config"
	"coin-guardian/internal/storage/migrations"
	pgstore "coin-guardian/internal/storage/postgres"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		Short:   "Apply embedded PostgreSQL and ClickHouse migrations",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commonRun()
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			if cfg == nil {
				return errors.New("no config found in context")
			}
			if cfg.PostgresDSN == "" {
				return errors.New("postgresDsn is required for migrate")
			}

			pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := migrations.RunPostgresMigrations(ctx, pool, logger)
			if err != nil {
				return fmt.Errorf("postgres migrations: %w", err)
			}
			logger.Info("postgres migrations complete", "applied", len(applied))

			if cfg.ClickHouseDSN != "" {
				conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN, logger)
				if err != nil {
					return fmt.Errorf("clickhouse migrations: %w", err)
				}
				conn.Close()
				logger.Info("clickhouse migrations complete")
			}
			return nil
		},
	}
}
