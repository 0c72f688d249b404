package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
)

// PresenceRepository keeps one row per technician, replaced whole on every
// upsert. The lat/lng column index serves the bounding-box range query.
type PresenceRepository struct {
	db *DB
}

func NewPresenceRepository(db *DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// Upsert replaces the technician's row as a whole record. SQLite serializes
// writers, so the last accepted write wins without field interleaving.
func (r *PresenceRepository) Upsert(ctx context.Context, record *entities.PresenceRecord) error {
	var lat, lng any
	if record.Location != nil {
		lat, lng = record.Location.Lat, record.Location.Lng
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO presence (technician_id, status, lat, lng, session_id, updated_at, display_name, affiliation_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(technician_id) DO UPDATE SET
			status = excluded.status,
			lat = excluded.lat,
			lng = excluded.lng,
			session_id = excluded.session_id,
			updated_at = excluded.updated_at,
			display_name = excluded.display_name,
			affiliation_name = excluded.affiliation_name`,
		record.TechnicianID, string(record.Status), lat, lng,
		nullableString(record.SessionID), record.UpdatedAt, record.DisplayName, record.AffiliationName,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert presence: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *PresenceRepository) Get(ctx context.Context, technicianID string) (*entities.PresenceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPresence+` WHERE technician_id = ?`, technicianID)
	if err != nil {
		return nil, fmt.Errorf("%w: get presence: %v", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: get presence: %v", entities.ErrStoreUnavailable, err)
		}
		return nil, entities.ErrNotFound
	}
	return scanPresence(rows)
}

func (r *PresenceRepository) ListAll(ctx context.Context) ([]*entities.PresenceRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectPresence)
	if err != nil {
		return nil, fmt.Errorf("%w: list presence: %v", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return collectPresence(rows)
}

// InBounds runs the range query over the lat/lng index. Like every coarse
// source, it may offer candidates outside the true circle but never misses
// one inside.
func (r *PresenceRepository) InBounds(ctx context.Context, b geo.Bounds) ([]geo.Candidate, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPresence+` WHERE status != ? AND lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?`,
		string(entities.PresenceStatusOffline), b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("%w: presence range query: %v", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records, err := collectPresence(rows)
	if err != nil {
		return nil, err
	}

	candidates := make([]geo.Candidate, 0, len(records))
	for _, record := range records {
		if record.Location == nil {
			continue
		}
		candidates = append(candidates, geo.Candidate{
			ID:    record.TechnicianID,
			Owner: record.AffiliationName,
			Point: *record.Location,
			Meta:  record,
		})
	}
	return candidates, nil
}

const selectPresence = `SELECT technician_id, status, lat, lng, session_id, updated_at, display_name, affiliation_name FROM presence`

func scanPresence(rows *sql.Rows) (*entities.PresenceRecord, error) {
	var record entities.PresenceRecord
	var status string
	var lat, lng sql.NullFloat64
	var sessionID sql.NullString
	err := rows.Scan(&record.TechnicianID, &status, &lat, &lng, &sessionID,
		&record.UpdatedAt, &record.DisplayName, &record.AffiliationName)
	if err != nil {
		return nil, fmt.Errorf("%w: scan presence: %v", entities.ErrStoreUnavailable, err)
	}
	record.Status = entities.PresenceStatus(status)
	if lat.Valid && lng.Valid {
		record.Location = &entities.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	if sessionID.Valid {
		record.SessionID = sessionID.String
	}
	return &record, nil
}

func collectPresence(rows *sql.Rows) ([]*entities.PresenceRecord, error) {
	var records []*entities.PresenceRecord
	for rows.Next() {
		record, err := scanPresence(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate presence: %v", entities.ErrStoreUnavailable, err)
	}
	return records, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
