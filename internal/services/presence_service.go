// Package services holds the application services of the location subsystem.
// Invariants live here: repositories store what they are given, services
// decide what is allowed to be stored.
package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/repository"
)

// PresenceService is the presence directory. Writers send typed patches;
// the service merges each patch onto the current record, enforces the
// status/session pairing invariant, stores the result as a whole record, and
// fans the accepted record out to subscribers.
type PresenceService struct {
	repo   repository.PresenceRepository
	logger *zap.Logger

	// Upserts for the same technician are serialized by upsertMu so a merge
	// never interleaves with a concurrent merge for the same key. Concurrent
	// publishers per technician aren't expected (one active device), but a
	// race must not corrupt the record.
	upsertMu sync.Mutex

	subMu       sync.RWMutex
	subscribers map[int]chan entities.PresenceRecord
	nextSubID   int
}

func NewPresenceService(repo repository.PresenceRepository, logger *zap.Logger) *PresenceService {
	return &PresenceService{
		repo:        repo,
		logger:      logger,
		subscribers: make(map[int]chan entities.PresenceRecord),
	}
}

// Upsert merges patch onto the technician's current record (a fresh offline
// record when none exists) and stores the result. Invariant violations fail
// with ErrInvalidStateTransition and leave the directory untouched.
func (s *PresenceService) Upsert(ctx context.Context, technicianID string, patch entities.PresencePatch) (*entities.PresenceRecord, error) {
	s.upsertMu.Lock()
	defer s.upsertMu.Unlock()

	current := entities.PresenceRecord{
		TechnicianID: technicianID,
		Status:       entities.PresenceStatusOffline,
	}
	if existing, err := s.repo.Get(ctx, technicianID); err == nil {
		current = *existing
	}

	merged := entities.MergePresence(current, patch)
	merged.TechnicianID = technicianID
	merged.UpdatedAt = time.Now()

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, &merged); err != nil {
		return nil, err
	}

	s.publish(merged)
	return &merged, nil
}

// Get returns the technician's current record, or ErrNotFound.
func (s *PresenceService) Get(ctx context.Context, technicianID string) (*entities.PresenceRecord, error) {
	return s.repo.Get(ctx, technicianID)
}

// ListAll returns every presence record, for dispatch views.
func (s *PresenceService) ListAll(ctx context.Context) ([]*entities.PresenceRecord, error) {
	return s.repo.ListAll(ctx)
}

// Subscribe returns a feed of accepted presence writes plus an unsubscribe
// function. The feed is buffered; a consumer that falls behind misses
// intermediate records, never sees corrupted ones — presence only promises
// the latest state.
func (s *PresenceService) Subscribe() (<-chan entities.PresenceRecord, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan entities.PresenceRecord, 16)
	s.subscribers[id] = ch

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// publish delivers a record to all subscribers without blocking on slow
// consumers: a full buffer drops the record for that subscriber.
func (s *PresenceService) publish(record entities.PresenceRecord) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- record:
		default:
			s.logger.Debug("presence subscriber lagging, dropping update",
				zap.String("technician_id", record.TechnicianID))
		}
	}
}
