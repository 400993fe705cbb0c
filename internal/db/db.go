// Package db opens the SQLite database that holds the offline cache.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with emsguide-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path and brings
// its schema up to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	return open(dsn, path, 0)
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
// Every connection to ":memory:" is a separate database, so the pool is
// pinned to one connection.
func OpenMemory() (*DB, error) {
	return open(":memory:?_pragma=foreign_keys(1)", ":memory:", 1)
}

func open(dsn, path string, maxConns int) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database %s: %w", path, err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

// Path returns the database file path, or ":memory:".
func (d *DB) Path() string {
	return d.path
}

// SchemaVersion returns the number of migrations applied.
func (d *DB) SchemaVersion() (int, error) {
	var v int
	err := d.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}

// migrate applies every migration newer than the stored user_version, each
// in its own transaction.
func (d *DB) migrate() error {
	current, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	for i := current; i < len(migrations); i++ {
		tx, err := d.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// migrations are applied in order. Append new ones; never edit old ones.
var migrations = []string{
	`
CREATE TABLE cache_stores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE cache_entries (
    store_id INTEGER NOT NULL REFERENCES cache_stores(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    status INTEGER NOT NULL,
    status_text TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL CHECK(type IN ('basic','cors','opaque')),
    header TEXT NOT NULL DEFAULT '{}',
    body BLOB,
    stored_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (store_id, url)
);

CREATE INDEX idx_cache_entries_store ON cache_entries(store_id);
`,
}
