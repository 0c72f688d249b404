package memory

import (
	"context"
	"sync"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/geo"
)

// ProviderRepository is the in-memory service-provider registry. Provider
// counts are small (hundreds, not millions), so the bounding-box query scans
// the map and lets the rectangle do the filtering — no cell index needed
// here.
type ProviderRepository struct {
	mu        sync.RWMutex
	providers map[string]entities.Provider
}

func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{
		providers: make(map[string]entities.Provider),
	}
}

func (r *ProviderRepository) Put(ctx context.Context, provider *entities.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[provider.ID] = *provider
	return nil
}

func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	return &provider, nil
}

func (r *ProviderRepository) ListAll(ctx context.Context) ([]*entities.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]*entities.Provider, 0, len(r.providers))
	for _, provider := range r.providers {
		p := provider
		providers = append(providers, &p)
	}
	return providers, nil
}

// InBounds offers every located provider inside the bounds. Providers with
// no registered location are never offered.
func (r *ProviderRepository) InBounds(ctx context.Context, b geo.Bounds) ([]geo.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []geo.Candidate
	for _, provider := range r.providers {
		if provider.Location == nil || !b.Contains(*provider.Location) {
			continue
		}
		p := provider
		candidates = append(candidates, geo.Candidate{
			ID:    provider.ID,
			Owner: provider.OwnerID,
			Point: *provider.Location,
			Meta:  &p,
		})
	}
	return candidates, nil
}
