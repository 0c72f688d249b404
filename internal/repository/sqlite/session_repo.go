package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fieldtrack/internal/domain/entities"
)

// SessionRepository persists sessions in the sessions table. The partial
// index on open sessions keeps the go-online reconciliation lookup cheap.
type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, technician_id, started_at, ended_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.TechnicianID, session.StartedAt, session.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert session: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, technician_id, started_at, ended_at FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (r *SessionRepository) GetOpenByTechnician(ctx context.Context, technicianID string) (*entities.Session, error) {
	// Orphaned duplicates from crashed clients are tolerated in storage;
	// the most recent open session is the authoritative one.
	row := r.db.QueryRowContext(ctx,
		`SELECT id, technician_id, started_at, ended_at FROM sessions
		 WHERE technician_id = ? AND ended_at IS NULL
		 ORDER BY started_at DESC LIMIT 1`, technicianID)
	return scanSession(row)
}

// Close stamps ended_at on an open session. The WHERE guard makes the write
// idempotent: an already-closed session keeps its original end time.
func (r *SessionRepository) Close(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("%w: close session: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func scanSession(row *sql.Row) (*entities.Session, error) {
	var session entities.Session
	var endedAt sql.NullTime
	err := row.Scan(&session.ID, &session.TechnicianID, &session.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan session: %v", entities.ErrStoreUnavailable, err)
	}
	if endedAt.Valid {
		ended := endedAt.Time
		session.EndedAt = &ended
	}
	return &session, nil
}
