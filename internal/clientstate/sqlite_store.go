package clientstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"fieldtrack/internal/domain/entities"
)

// SQLiteStore keeps client state in a small local SQLite file, one row per
// identity key.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the client-state database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open client state store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping client state store: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS client_state (
		key TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL DEFAULT 0,
		paused INTEGER NOT NULL DEFAULT 0,
		session_id TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("client state migration failed: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (State, bool, error) {
	var state State
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled, paused, session_id FROM client_state WHERE key = ?`, key).
		Scan(&state.Enabled, &state.Paused, &state.SessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("%w: load client state: %v", entities.ErrStoreUnavailable, err)
	}
	return state, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, state State) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_state (key, enabled, paused, session_id, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET
			enabled = excluded.enabled,
			paused = excluded.paused,
			session_id = excluded.session_id,
			updated_at = excluded.updated_at`,
		key, state.Enabled, state.Paused, state.SessionID)
	if err != nil {
		return fmt.Errorf("%w: save client state: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: clear client state: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Migrate(ctx context.Context, fromKey, toKey string) error {
	state, ok, err := s.Load(ctx, fromKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.Save(ctx, toKey, state); err != nil {
		return err
	}
	return s.Clear(ctx, fromKey)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
