package memory

import (
	"context"
	"sort"
	"sync"

	"fieldtrack/internal/domain/entities"
)

// trackKey identifies one session's track log.
type trackKey struct {
	technicianID string
	sessionID    string
}

// TrackRepository is the in-memory append-only track log. Points are held in
// arrival order per (technician, session); reads sort by CapturedAt with a
// stable sort so ties keep insertion order, as the polyline contract
// requires even when network delivery reorders writes.
type TrackRepository struct {
	mu     sync.RWMutex
	tracks map[trackKey][]entities.TrackPoint
}

func NewTrackRepository() *TrackRepository {
	return &TrackRepository{
		tracks: make(map[trackKey][]entities.TrackPoint),
	}
}

// Append adds one point to its session's log. There is no update or delete
// path.
func (r *TrackRepository) Append(ctx context.Context, point *entities.TrackPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := trackKey{technicianID: point.TechnicianID, sessionID: point.SessionID}
	r.tracks[key] = append(r.tracks[key], *point)
	return nil
}

// Points returns the session's samples ordered by CapturedAt ascending.
// A session with no points yields an empty slice, not an error.
func (r *TrackRepository) Points(ctx context.Context, technicianID, sessionID string) ([]*entities.TrackPoint, error) {
	r.mu.RLock()
	stored := r.tracks[trackKey{technicianID: technicianID, sessionID: sessionID}]
	points := make([]*entities.TrackPoint, len(stored))
	for i := range stored {
		p := stored[i]
		points[i] = &p
	}
	r.mu.RUnlock()

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].CapturedAt.Before(points[j].CapturedAt)
	})
	return points, nil
}
