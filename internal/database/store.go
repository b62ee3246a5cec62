package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the persistent key-value store shared by all managers.
// Get never fails the caller: a missing, unreadable or malformed entry is
// reported as absent.
type Store interface {
	// Get returns the raw JSON stored under key, or false when there is none.
	Get(ctx context.Context, key Key) (json.RawMessage, bool)

	// Set marshals value to JSON and stores it under key, replacing any previous value.
	Set(ctx context.Context, key Key, value any) error

	// Clear removes every key used by this system in one step.
	Clear(ctx context.Context) error
}

// Maintainer is implemented by stores that support offline compaction.
type Maintainer interface {
	RunSQLMaintenance(ctx context.Context) error
}

// Decode reads key from store and unmarshals it into a T.
// Any failure, including a blob of the wrong shape, is treated as absent.
func Decode[T any](ctx context.Context, store Store, key Key) (T, bool) {
	var out T
	raw, ok := store.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.DebugContext(ctx, "Discarding stored value with unexpected shape", "key", key, "error", err)
		var zero T
		return zero, false
	}
	return out, true
}

// SQLStore provides an implementation of the Store interface using sqlx.
type SQLStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SQLStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Get retrieves the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key Key) (json.RawMessage, bool) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE key = ?`, string(key))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false
	case err != nil:
		s.logger.WarnContext(ctx, "Error reading key, treating as absent", "key", key, "error", err)
		return nil, false
	}

	if !json.Valid([]byte(value)) {
		s.logger.WarnContext(ctx, "Stored value is not valid JSON, treating as absent", "key", key)
		return nil, false
	}
	return json.RawMessage(value), true
}

// Set upserts value under key.
func (s *SQLStore) Set(ctx context.Context, key Key, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}

	entry := Entry{Key: string(key), Value: string(data), UpdatedAt: time.Now().UTC()}
	query := `
        INSERT INTO kv_entries (key, value, updated_at)
        VALUES (:key, :value, :updated_at)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
    `
	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		s.logger.ErrorContext(ctx, "Error saving key", "key", key, "error", err)
		return fmt.Errorf("failed to save key %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Key saved successfully", "key", key, "bytes", len(data))
	return nil
}

// Clear deletes every known key in a single transaction.
func (s *SQLStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for reset", "error", err)
		return fmt.Errorf("failed to begin transaction for reset: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query, args, err := sqlx.In(`DELETE FROM kv_entries WHERE key IN (?)`, keyStrings())
	if err != nil {
		return fmt.Errorf("failed to build reset query: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting keys during reset", "error", err)
		return fmt.Errorf("failed to delete keys during reset: %w", err)
	}
	count, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit reset transaction", "error", err)
		return fmt.Errorf("failed to commit reset transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Successfully reset all data", "keys_deleted", count)
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *SQLStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")
	startTime := time.Now()

	// VACUUM cannot run inside a transaction.
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		s.logger.ErrorContext(ctx, "Database VACUUM failed", "error", err)
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed", "duration", time.Since(startTime))
	return nil
}

func keyStrings() []string {
	out := make([]string, len(Keys))
	for i, k := range Keys {
		out[i] = string(k)
	}
	return out
}
