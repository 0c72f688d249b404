package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/repository"
)

// TrackService is the append-only track log. It validates locations before
// they reach storage and serves per-session polylines ordered by capture
// time. Live consumers can subscribe to a session's feed to extend a drawn
// polyline without re-reading it.
type TrackService struct {
	repo   repository.TrackRepository
	logger *zap.Logger

	subMu       sync.RWMutex
	subscribers map[trackFeedKey]map[int]chan entities.TrackPoint
	nextSubID   int
}

type trackFeedKey struct {
	technicianID string
	sessionID    string
}

func NewTrackService(repo repository.TrackRepository, logger *zap.Logger) *TrackService {
	return &TrackService{
		repo:        repo,
		logger:      logger,
		subscribers: make(map[trackFeedKey]map[int]chan entities.TrackPoint),
	}
}

// Append validates and stores one sample. Out-of-range coordinates fail with
// ErrInvalidLocation before anything is written.
func (s *TrackService) Append(ctx context.Context, point *entities.TrackPoint) error {
	if err := point.Location.Validate(); err != nil {
		return err
	}
	if err := s.repo.Append(ctx, point); err != nil {
		return err
	}
	s.publish(*point)
	return nil
}

// Polyline returns the session's location sequence ordered by CapturedAt
// ascending. A session with no points yields an empty polyline, not an
// error.
func (s *TrackService) Polyline(ctx context.Context, technicianID, sessionID string) ([]entities.GeoPoint, error) {
	points, err := s.repo.Points(ctx, technicianID, sessionID)
	if err != nil {
		return nil, err
	}
	polyline := make([]entities.GeoPoint, len(points))
	for i, point := range points {
		polyline[i] = point.Location
	}
	return polyline, nil
}

// Points returns the session's full samples in capture order.
func (s *TrackService) Points(ctx context.Context, technicianID, sessionID string) ([]*entities.TrackPoint, error) {
	return s.repo.Points(ctx, technicianID, sessionID)
}

// Subscribe returns a live feed of points appended to one session's track,
// plus an unsubscribe function.
func (s *TrackService) Subscribe(technicianID, sessionID string) (<-chan entities.TrackPoint, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	key := trackFeedKey{technicianID: technicianID, sessionID: sessionID}
	if _, ok := s.subscribers[key]; !ok {
		s.subscribers[key] = make(map[int]chan entities.TrackPoint)
	}
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan entities.TrackPoint, 16)
	s.subscribers[key][id] = ch

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if feeds, ok := s.subscribers[key]; ok {
			if existing, ok := feeds[id]; ok {
				delete(feeds, id)
				close(existing)
			}
			if len(feeds) == 0 {
				delete(s.subscribers, key)
			}
		}
	}
	return ch, unsubscribe
}

func (s *TrackService) publish(point entities.TrackPoint) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	key := trackFeedKey{technicianID: point.TechnicianID, sessionID: point.SessionID}
	for _, ch := range s.subscribers[key] {
		select {
		case ch <- point:
		default:
			s.logger.Debug("track subscriber lagging, dropping point",
				zap.String("session_id", point.SessionID))
		}
	}
}
