package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
)

// ProviderRepository persists the service-provider registry.
type ProviderRepository struct {
	db *DB
}

func NewProviderRepository(db *DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Put(ctx context.Context, provider *entities.Provider) error {
	var lat, lng any
	if provider.Location != nil {
		lat, lng = provider.Location.Lat, provider.Location.Lng
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO providers (id, name, owner_id, lat, lng, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			lat = excluded.lat,
			lng = excluded.lng,
			updated_at = excluded.updated_at`,
		provider.ID, provider.Name, provider.OwnerID, lat, lng, provider.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert provider: %v", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, lat, lng, updated_at FROM providers WHERE id = ?`, id)

	provider, err := scanProvider(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	return provider, err
}

func (r *ProviderRepository) ListAll(ctx context.Context) ([]*entities.Provider, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id, lat, lng, updated_at FROM providers`)
	if err != nil {
		return nil, fmt.Errorf("%w: list providers: %v", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var providers []*entities.Provider
	for rows.Next() {
		provider, err := scanProvider(rows.Scan)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate providers: %v", entities.ErrStoreUnavailable, err)
	}
	return providers, nil
}

func (r *ProviderRepository) InBounds(ctx context.Context, b geo.Bounds) ([]geo.Candidate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id, lat, lng, updated_at FROM providers
		 WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?`,
		b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("%w: provider range query: %v", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var candidates []geo.Candidate
	for rows.Next() {
		provider, err := scanProvider(rows.Scan)
		if err != nil {
			return nil, err
		}
		if provider.Location == nil {
			continue
		}
		candidates = append(candidates, geo.Candidate{
			ID:    provider.ID,
			Owner: provider.OwnerID,
			Point: *provider.Location,
			Meta:  provider,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate providers: %v", entities.ErrStoreUnavailable, err)
	}
	return candidates, nil
}

func scanProvider(scan func(dest ...any) error) (*entities.Provider, error) {
	var provider entities.Provider
	var lat, lng sql.NullFloat64
	err := scan(&provider.ID, &provider.Name, &provider.OwnerID, &lat, &lng, &provider.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scan provider: %v", entities.ErrStoreUnavailable, err)
	}
	if lat.Valid && lng.Valid {
		provider.Location = &entities.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &provider, nil
}
