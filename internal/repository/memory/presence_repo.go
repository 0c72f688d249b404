// Package memory provides in-memory implementations of the store interfaces.
// They back tests and single-process deployments; each store is guarded by
// its own RWMutex, so writes for different technicians never contend across
// stores.
package memory

import (
	"context"
	"sync"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
)

// PresenceRepository stores the latest presence record per technician with a
// secondary geohash index for bounding-box queries. Two structures are kept
// in sync on every write:
//   - records: technicianID → PresenceRecord (primary lookup)
//   - cellIndex: geohash cell → technicianID set (spatial lookup)
//
// The dual-index pattern means a bounding-box query touches only the cells
// covering the box instead of scanning every record — the index is what
// keeps the pre-filter cheap at thousands of records.
type PresenceRepository struct {
	mu        sync.RWMutex
	precision int
	maxCells  int
	records   map[string]entities.PresenceRecord
	cellIndex map[string]map[string]struct{} // geohash → technicianID set
}

// NewPresenceRepository creates an empty presence store with the given
// geohash precision for its spatial index. maxCells bounds the cell cover of
// a single query; covers larger than that fall back to a full scan.
func NewPresenceRepository(precision, maxCells int) *PresenceRepository {
	return &PresenceRepository{
		precision: precision,
		maxCells:  maxCells,
		records:   make(map[string]entities.PresenceRecord),
		cellIndex: make(map[string]map[string]struct{}),
	}
}

// Upsert replaces the technician's record as a whole. If the technician
// moved to a different geohash cell (or lost/gained a location), the index
// entry moves with them. Empty cells are dropped so the index doesn't grow
// without bound.
func (r *PresenceRepository) Upsert(ctx context.Context, record *entities.PresenceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.records[record.TechnicianID]; ok && old.Location != nil {
		oldCell := geo.Encode(*old.Location, r.precision)
		if set, ok := r.cellIndex[oldCell]; ok {
			delete(set, record.TechnicianID)
			if len(set) == 0 {
				delete(r.cellIndex, oldCell)
			}
		}
	}

	r.records[record.TechnicianID] = *record

	if record.Location != nil {
		cell := geo.Encode(*record.Location, r.precision)
		if _, ok := r.cellIndex[cell]; !ok {
			r.cellIndex[cell] = make(map[string]struct{})
		}
		r.cellIndex[cell][record.TechnicianID] = struct{}{}
	}

	return nil
}

// Get returns a copy of the technician's record, or ErrNotFound.
func (r *PresenceRepository) Get(ctx context.Context, technicianID string) (*entities.PresenceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[technicianID]
	if !ok {
		return nil, entities.ErrNotFound
	}
	return &record, nil
}

// ListAll returns copies of every presence record.
func (r *PresenceRepository) ListAll(ctx context.Context) ([]*entities.PresenceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*entities.PresenceRecord, 0, len(r.records))
	for _, record := range r.records {
		rec := record
		records = append(records, &rec)
	}
	return records, nil
}

// InBounds offers every non-offline, located record in the cells covering
// the bounds. Whole cells are offered, so the result may include records
// just outside the box — the engine's exact filter handles those. A cover
// larger than maxCells degrades to a full scan rather than dropping cells.
func (r *PresenceRepository) InBounds(ctx context.Context, b geo.Bounds) ([]geo.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []geo.Candidate
	offer := func(technicianID string) {
		record, ok := r.records[technicianID]
		if !ok || record.Location == nil || record.Status == entities.PresenceStatusOffline {
			return
		}
		rec := record
		candidates = append(candidates, geo.Candidate{
			ID:    record.TechnicianID,
			Owner: record.AffiliationName,
			Point: *record.Location,
			Meta:  &rec,
		})
	}

	cells := geo.Cover(b, r.precision, r.maxCells)
	if cells == nil {
		for id := range r.records {
			offer(id)
		}
		return candidates, nil
	}

	for _, cell := range cells {
		for id := range r.cellIndex[cell] {
			offer(id)
		}
	}
	return candidates, nil
}
