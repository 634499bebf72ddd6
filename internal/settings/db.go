package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

// DB is a SQLite-backed Store. One file holds the settings of every
// plugin namespace; the filter only ever reads and writes its own.
type DB struct {
	db   *sql.DB
	path string
}

var _ Store = (*DB)(nil)

// DefaultPath returns the settings database location under the XDG data
// directory.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "gifmask", "settings.db")
}

// Open opens or creates the settings database at path, creating parent
// directories as needed.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; a larger pool only causes lock
	// contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &DB{db: db, path: path}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *DB) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		plugin TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (plugin, key)
	);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the stored value and whether the key exists.
func (s *DB) Get(ctx context.Context, plugin, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE plugin = ? AND key = ?",
		plugin, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s/%s: %w", plugin, key, err)
	}
	return value, true, nil
}

// Set stores a value, overwriting an existing one.
func (s *DB) Set(ctx context.Context, plugin, key, value string) error {
	query := `
	INSERT INTO settings (plugin, key, value)
	VALUES (?, ?, ?)
	ON CONFLICT(plugin, key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, plugin, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s/%s: %w", plugin, key, err)
	}
	return nil
}
