// Package store persists entries, weekly notes, projects and preferences
// in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DatabaseFile is the file name inside Config.DataDir
const DatabaseFile = "trace.db"

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Config controls where the database lives
type Config struct {
	DataDir string
	// Now stamps created/updated times; time.Now when nil
	Now func() time.Time
}

// DefaultConfig stores data under ~/.trace
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".trace"),
		Now:     time.Now,
	}
}

// Store is safe for concurrent use
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (creating if needed) the database in cfg.DataDir
func New(cfg Config) (*Store, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, DatabaseFile)
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id         TEXT PRIMARY KEY,
			date       TEXT NOT NULL UNIQUE,
			mood       TEXT NOT NULL,
			mood_note  TEXT NOT NULL DEFAULT '',
			bullets    TEXT NOT NULL DEFAULT '[]',
			events     TEXT NOT NULL DEFAULT '[]',
			people     TEXT NOT NULL DEFAULT '[]',
			tomorrow   TEXT NOT NULL DEFAULT '',
			work_items TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date DESC);

		CREATE TABLE IF NOT EXISTS weekly_notes (
			week_start TEXT PRIMARY KEY,
			notes      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			crew        TEXT NOT NULL,
			jira_link   TEXT,
			title       TEXT NOT NULL,
			notion_link TEXT,
			status      TEXT NOT NULL DEFAULT 'active',
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at DESC);

		CREATE TABLE IF NOT EXISTS preferences (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) nowMillis() int64 {
	return s.cfg.Now().UnixMilli()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func encodeList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList[T any](raw string) ([]T, error) {
	out := []T{}
	if raw == "" || raw == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
