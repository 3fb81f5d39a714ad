package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"helpmoto/internal/sentinel"
)

// SQLiteBackend persists items in an embedded SQLite database. It is the
// durable single-node backend, mirroring the device-local protected storage
// the mobile client uses.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path and ensures the
// items table exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite backend: %w", err)
	}
	// A single writer avoids SQLITE_BUSY on concurrent handlers.
	db.SetMaxOpenConns(1)

	query := `
		CREATE TABLE IF NOT EXISTS secure_items (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite backend: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM secure_items WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get item: %w", err)
	}
	return value, nil
}

func (b *SQLiteBackend) SetItem(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO secure_items (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := b.db.ExecContext(ctx, query, key, value, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("set item: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) DeleteItem(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM secure_items WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable, for readiness probes.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
