package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// sqliteBusyTimeout lets concurrent snapshot writers wait for the lock
// instead of failing with SQLITE_BUSY.
const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

// Init opens the snapshot database. Supported drivers are "sqlite" (modernc)
// and "pgx" (PostgreSQL).
func Init(driver, connection string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		var err error
		connection, err = prepareSQLite(connection)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	// Snapshot traffic is a handful of small reads and writes per request.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// prepareSQLite creates the database directory and adds a busy timeout unless
// the DSN sets one.
func prepareSQLite(connection string) (string, error) {
	if strings.HasPrefix(connection, ":memory:") {
		return connection, nil
	}

	file, _, _ := strings.Cut(strings.TrimPrefix(connection, "file:"), "?")
	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	if strings.Contains(connection, "busy_timeout") {
		return connection, nil
	}
	if strings.Contains(connection, "?") {
		return connection + "&" + sqliteBusyTimeout, nil
	}
	return connection + "?" + sqliteBusyTimeout, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
