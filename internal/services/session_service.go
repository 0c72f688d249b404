package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/repository"
)

// SessionService owns shift lifecycle on the store side: opening sessions,
// closing them, and keeping the presence directory consistent with both.
// It is the only writer of session state, which is what makes the presence
// pairing invariant (online/paused ⇒ open session) hold referentially.
type SessionService struct {
	sessions repository.SessionRepository
	presence *PresenceService
	logger   *zap.Logger
}

func NewSessionService(sessions repository.SessionRepository, presence *PresenceService, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		presence: presence,
		logger:   logger,
	}
}

// Open starts a new shift for the technician and marks them online.
//
// Stale-session policy: reconciliation is lazy. A crashed client leaves its
// session open in the store; the next Open closes it (ended now) before
// creating the replacement, so a technician never accumulates two open
// sessions. There is no server-side TTL sweeper — the client is the
// authority on shift state.
func (s *SessionService) Open(ctx context.Context, technicianID, displayName, affiliationName string) (*entities.Session, error) {
	if stale, err := s.sessions.GetOpenByTechnician(ctx, technicianID); err == nil {
		s.logger.Info("superseding stale open session",
			zap.String("technician_id", technicianID),
			zap.String("session_id", stale.ID),
		)
		if err := s.sessions.Close(ctx, stale.ID, time.Now()); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, entities.ErrNotFound) {
		return nil, err
	}

	session := entities.NewSession(uuid.New().String(), technicianID)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	patch := entities.PresencePatch{
		Status:    entities.StatusPtr(entities.PresenceStatusOnline),
		SessionID: entities.StringPtr(session.ID),
	}
	if displayName != "" {
		patch.DisplayName = entities.StringPtr(displayName)
	}
	if affiliationName != "" {
		patch.AffiliationName = entities.StringPtr(affiliationName)
	}
	if _, err := s.presence.Upsert(ctx, technicianID, patch); err != nil {
		return nil, err
	}

	s.logger.Info("session opened",
		zap.String("technician_id", technicianID),
		zap.String("session_id", session.ID),
	)
	return session, nil
}

// End closes the technician's open shift and marks them offline. Idempotent
// with respect to presence: with no open session the presence record is
// still forced offline, so a retry after a partial failure converges.
func (s *SessionService) End(ctx context.Context, technicianID string) error {
	session, err := s.sessions.GetOpenByTechnician(ctx, technicianID)
	switch {
	case err == nil:
		if err := s.sessions.Close(ctx, session.ID, time.Now()); err != nil {
			return err
		}
		s.logger.Info("session closed",
			zap.String("technician_id", technicianID),
			zap.String("session_id", session.ID),
		)
	case errors.Is(err, entities.ErrNotFound):
		// Nothing open — still normalize presence below.
	default:
		return err
	}

	_, err = s.presence.Upsert(ctx, technicianID, entities.PresencePatch{
		Status:    entities.StatusPtr(entities.PresenceStatusOffline),
		SessionID: entities.StringPtr(""),
	})
	return err
}

// Pause marks the technician's presence paused without touching the session.
func (s *SessionService) Pause(ctx context.Context, technicianID string) error {
	_, err := s.presence.Upsert(ctx, technicianID, entities.PresencePatch{
		Status: entities.StatusPtr(entities.PresenceStatusPaused),
	})
	return err
}

// Resume marks a paused technician online again.
func (s *SessionService) Resume(ctx context.Context, technicianID string) error {
	_, err := s.presence.Upsert(ctx, technicianID, entities.PresencePatch{
		Status: entities.StatusPtr(entities.PresenceStatusOnline),
	})
	return err
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*entities.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// GetOpen returns the technician's open session, or ErrNotFound.
func (s *SessionService) GetOpen(ctx context.Context, technicianID string) (*entities.Session, error) {
	return s.sessions.GetOpenByTechnician(ctx, technicianID)
}
