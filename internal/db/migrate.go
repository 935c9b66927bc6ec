package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

var dialects = map[string]goose.Dialect{
	"sqlite": goose.DialectSQLite3,
	"pgx":    goose.DialectPostgres,
}

func dialectFor(driver string) (goose.Dialect, error) {
	dialect, ok := dialects[driver]
	if !ok {
		return "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
	return dialect, nil
}

func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations applies all pending snapshot store migrations.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	slog.Info("migrations completed", "applied", len(results), "version", version)
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) {
		slog.Info("nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	slog.Info("rolled back migration", "version", result.Source.Version)
	return nil
}
