// Package sqlite provides durable implementations of the store interfaces on
// an embedded SQLite database (modernc.org/sqlite, no cgo). One database file
// holds sessions, presence records, and track points; WAL mode keeps
// concurrent readers off the writers' backs.
package sqlite

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB wraps the shared connection handle plus the logger used by the stores.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{DB: db, logger: logger}
	if err := d.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("location store opened", zap.String("path", path))
	return d, nil
}

func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			technician_id TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_technician_open
			ON sessions(technician_id) WHERE ended_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS presence (
			technician_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			lat REAL,
			lng REAL,
			session_id TEXT,
			updated_at TIMESTAMP NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			affiliation_name TEXT NOT NULL DEFAULT ''
		)`,
		// The lat/lng index is the coarse range index behind the bounding-box
		// pre-filter: the nearby query never scans the whole table.
		`CREATE INDEX IF NOT EXISTS idx_presence_lat_lng ON presence(lat, lng)`,
		`CREATE TABLE IF NOT EXISTS track_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			technician_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			captured_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_track_points_session
			ON track_points(technician_id, session_id, captured_at)`,
		`CREATE TABLE IF NOT EXISTS providers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			lat REAL,
			lng REAL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_providers_lat_lng ON providers(lat, lng)`,
	}

	for _, migration := range migrations {
		if _, err := d.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	d.logger.Info("location store migrations completed")
	return nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	if err := d.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.logger.Info("location store closed")
	return nil
}
