package cache

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/querydeck/querydeck/internal/dashboard"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists snapshots to a local SQLite file so the gateway
// can render instantly after a restart, before the first reconcile.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the cache database at path and
// initializes its schema. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Get implements Store. A row that fails to decode is treated as a
// cache miss; a stale cache is harmless, a corrupt one must not be.
func (s *SQLiteStore) Get(user string) (*dashboard.Snapshot, bool) {
	var raw string
	err := s.db.QueryRow(
		`SELECT snapshot FROM snapshots WHERE user_key = ?`, user,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// Put implements Store.
func (s *SQLiteStore) Put(user string, snap *dashboard.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (user_key, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_key) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		user, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(user string) error {
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE user_key = ?`, user)
	return err
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
