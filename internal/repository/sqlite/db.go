// Package sqlite stores users and attendance in a local SQLite file for
// single-device kiosks.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		encoding TEXT NOT NULL,
		registered_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		attendance_date TEXT NOT NULL,
		user_key TEXT NOT NULL,
		name TEXT NOT NULL,
		marked_at TEXT NOT NULL,
		PRIMARY KEY (attendance_date, user_key)
	)`,
	`CREATE TABLE IF NOT EXISTS capture_attempts (
		id TEXT PRIMARY KEY,
		purpose TEXT NOT NULL,
		outcome TEXT NOT NULL,
		frames INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		user_key TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_marked ON attendance(attendance_date, marked_at)`,
}

// DB is one SQLite handle shared by the stores of this package.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Times are stored as RFC 3339 text, which sorts chronologically within one
// UTC offset.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
