package services

import (
	"context"

	"go.uber.org/zap"

	"fieldtrack/internal/geo"
	"fieldtrack/internal/repository"
)

// NearbyService runs proximity queries for dispatch. The engine is
// collection-agnostic; this service just points it at the right candidate
// source — the presence directory for technicians, the provider registry for
// service providers — and applies the configured default radius.
type NearbyService struct {
	presence        repository.PresenceRepository
	providers       repository.ProviderRepository
	defaultRadiusKm float64
	logger          *zap.Logger
}

func NewNearbyService(
	presence repository.PresenceRepository,
	providers repository.ProviderRepository,
	defaultRadiusKm float64,
	logger *zap.Logger,
) *NearbyService {
	return &NearbyService{
		presence:        presence,
		providers:       providers,
		defaultRadiusKm: defaultRadiusKm,
		logger:          logger,
	}
}

// Technicians returns the active (online or paused) technicians within the
// query radius of its center, nearest first.
func (s *NearbyService) Technicians(ctx context.Context, q geo.Query) ([]geo.Match, error) {
	if q.RadiusKm == 0 {
		q.RadiusKm = s.defaultRadiusKm
	}
	return geo.FindNearby(ctx, s.presence, q)
}

// Providers returns the service providers within the query radius, nearest
// first, optionally restricted to one owner.
func (s *NearbyService) Providers(ctx context.Context, q geo.Query) ([]geo.Match, error) {
	if q.RadiusKm == 0 {
		q.RadiusKm = s.defaultRadiusKm
	}
	return geo.FindNearby(ctx, s.providers, q)
}
