package memory

import (
	"context"
	"sync"
	"time"

	"fieldtrack/internal/domain/entities"
)

// SessionRepository stores sessions by id with a secondary index of open
// sessions per technician, so the "at most one open session" reconciliation
// on go-online is an O(1) lookup.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
	open     map[string]string // technicianID → open session id
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*entities.Session),
		open:     make(map[string]string),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	r.sessions[session.ID] = &stored
	if stored.Open() {
		r.open[session.TechnicianID] = session.ID
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *SessionRepository) GetOpenByTechnician(ctx context.Context, technicianID string) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.open[technicianID]
	if !ok {
		return nil, entities.ErrNotFound
	}
	copied := *r.sessions[id]
	return &copied, nil
}

// Close stamps EndedAt on the session and clears the open index entry.
// Closing a closed or unknown session is a no-op, keeping end-shift
// idempotent.
func (r *SessionRepository) Close(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || !session.Open() {
		return nil
	}
	session.Close(at)
	if r.open[session.TechnicianID] == id {
		delete(r.open, session.TechnicianID)
	}
	return nil
}
