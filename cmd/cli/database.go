package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/pkg/config"
	"github.com/aryan0dhankhar/crm/pkg/database"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the schema of the configured database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, pool *database.ConnectionPool) error {
			if err := database.Migrate(ctx, pool.GetDB()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ schema up to date")
			if !migrateSeed {
				return nil
			}
			if err := database.Seed(ctx, pool.GetDB()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ default user and pipeline seeded")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default user and pipeline stages when missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, pool *database.ConnectionPool) error {
			if err := database.Seed(ctx, pool.GetDB()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ default user and pipeline seeded")
			return nil
		})
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "also seed the default user and pipeline")
}

// withDatabase opens the database named by DB_DRIVER and DATABASE_URL for fn
func withDatabase(ctx context.Context, fn func(context.Context, *database.ConnectionPool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger.ForEnvironment(cfg.Environment, cfg.LogLevel))
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, pool)
}
