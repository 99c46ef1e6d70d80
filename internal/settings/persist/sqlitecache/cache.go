// Package sqlitecache implements the local settings cache on SQLite.
//
// The cache stores a single JSON blob under one fixed key, namespaced to
// this application. Absence of the row is a valid, non-error state.
package sqlitecache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// blobKey is the fixed key the settings blob is stored under.
const blobKey = "settings"

// Cache is a SQLite-backed single-blob store.
type Cache struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database. If dataDir is empty it defaults
// to ~/.tachikoma/data.
func Open(dataDir string) (*Cache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tachikoma", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "settings.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS settings_cache (
	key        TEXT PRIMARY KEY,
	blob       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Cache{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Read returns the cached blob. A missing row reports found == false with
// a nil error.
func (c *Cache) Read() ([]byte, bool, error) {
	var blob string
	err := c.db.QueryRow(
		"SELECT blob FROM settings_cache WHERE key = ?", blobKey,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading settings cache: %w", err)
	}
	return []byte(blob), true, nil
}

// Write replaces the cached blob.
func (c *Cache) Write(blob []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO settings_cache (key, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		blobKey, string(blob), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing settings cache: %w", err)
	}
	return nil
}
