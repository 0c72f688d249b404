package entities

import "time"

// Provider is a service provider that can be discovered through the
// proximity engine ("nearby service providers within N km"). Providers with
// no registered location are excluded from search results rather than being
// treated as infinitely far away.
type Provider struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Location  *GeoPoint `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProvider(id, name, ownerID string, location *GeoPoint) *Provider {
	return &Provider{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		Location:  location,
		UpdatedAt: time.Now(),
	}
}
