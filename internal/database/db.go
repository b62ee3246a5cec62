// Package database provides the persistent key-value store that backs every
// collection of the assistant: SQLite setup, migrations, and the Store
// implementations.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/wonderfulgo/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// Open connects to the SQLite file at path, brings the kv_entries schema up
// to date and returns the connection pool.
func Open(path string, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "database", "path", path)

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	// One writer at a time; the kv blobs are rewritten whole.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	version, err := Migrate(db.DB, FilePath(path), log)
	if err != nil {
		Close(db, log)
		return nil, err
	}

	var entries int
	if err := db.Get(&entries, `SELECT COUNT(*) FROM kv_entries`); err != nil {
		Close(db, log)
		return nil, fmt.Errorf("failed to read kv_entries: %w", err)
	}

	log.Info("State store ready", "schema_version", version, "entries", entries)
	return db, nil
}

// Close closes the pool, logging rather than returning a failure.
func Close(db *sqlx.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.Close(); err != nil {
		logger.Error("Error closing state store", "error", err)
		return
	}
	logger.Debug("State store closed")
}

// Migrate applies the embedded kv_entries migrations and returns the schema
// version the file is at afterwards.
func Migrate(db *sql.DB, name string, logger *slog.Logger) (uint, error) {
	if db == nil {
		return 0, errors.New("cannot migrate a nil connection")
	}
	if name == "" {
		return 0, errors.New("state file name is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	target, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: name})
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sqlite migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrator: %w", err)
	}

	switch err := migrator.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("kv_entries schema already current")
	case err != nil:
		return 0, fmt.Errorf("failed to migrate kv_entries: %w", err)
	default:
		logger.Info("kv_entries schema migrated")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("kv_entries schema is dirty at version %d", version)
	}
	return version, nil
}

// FilePath strips the file: scheme and query options from a SQLite DSN and
// unescapes the rest.
func FilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}
