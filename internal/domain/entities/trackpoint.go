package entities

import "time"

// TrackPoint is one timestamped location sample in a session's track log.
// Track points are append-only: never mutated or deleted in normal operation.
// The ordered sequence of a session's points is its polyline; the ordering
// key is CapturedAt, with insertion order breaking ties.
type TrackPoint struct {
	TechnicianID string    `json:"technician_id"`
	SessionID    string    `json:"session_id"`
	Location     GeoPoint  `json:"location"`
	CapturedAt   time.Time `json:"captured_at"`
}

// NewTrackPoint creates a TrackPoint captured at the given instant.
func NewTrackPoint(technicianID, sessionID string, location GeoPoint, capturedAt time.Time) *TrackPoint {
	return &TrackPoint{
		TechnicianID: technicianID,
		SessionID:    sessionID,
		Location:     location,
		CapturedAt:   capturedAt,
	}
}
