package sqlite

import (
	"context"
	"fmt"

	"fieldtrack/internal/domain/entities"
)

// TrackRepository appends track points to the track_points table. The
// autoincrement id records insertion order; reads order by captured_at with
// id as the tie-break, so the polyline comes back in capture order no matter
// how delivery reordered the writes.
type TrackRepository struct {
	db *DB
}

func NewTrackRepository(db *DB) *TrackRepository {
	return &TrackRepository{db: db}
}

func (r *TrackRepository) Append(ctx context.Context, point *entities.TrackPoint) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO track_points (technician_id, session_id, lat, lng, captured_at) VALUES (?, ?, ?, ?, ?)`,
		point.TechnicianID, point.SessionID, point.Location.Lat, point.Location.Lng, point.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: append track point: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *TrackRepository) Points(ctx context.Context, technicianID, sessionID string) ([]*entities.TrackPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT technician_id, session_id, lat, lng, captured_at FROM track_points
		 WHERE technician_id = ? AND session_id = ?
		 ORDER BY captured_at ASC, id ASC`,
		technicianID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: read track: %v", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	points := make([]*entities.TrackPoint, 0)
	for rows.Next() {
		var point entities.TrackPoint
		if err := rows.Scan(&point.TechnicianID, &point.SessionID,
			&point.Location.Lat, &point.Location.Lng, &point.CapturedAt); err != nil {
			return nil, fmt.Errorf("%w: scan track point: %v", entities.ErrStoreUnavailable, err)
		}
		p := point
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate track: %v", entities.ErrStoreUnavailable, err)
	}
	return points, nil
}
