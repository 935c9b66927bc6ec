package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/spacetraveling/internal/config"
	"github.com/templui/spacetraveling/internal/db"
	"github.com/templui/spacetraveling/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the snapshot database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), db.RunMigrations)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), db.MigrateDown)
		},
	})
	return cmd
}

func migrate(ctx context.Context, run func(context.Context, *sql.DB, string) error) error {
	cfg := config.Load()
	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer flush()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer database.Close()

	err = run(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
