package geo

import (
	"context"
	"log/slog"

	"rojgarsetu/core-service/internal/model"
)

// Provider resolves coordinates to an address. Satisfied by *Client.
type Provider interface {
	Reverse(ctx context.Context, lat, lon float64) (*model.Address, error)
}

// Service fronts the geocode cache and the external provider. The cache is
// consulted first, so a prior successful lookup keeps serving even while the
// provider is down.
type Service struct {
	cache    Cache
	provider Provider
}

// NewService returns a geocoding Service.
func NewService(cache Cache, provider Provider) *Service {
	return &Service{cache: cache, provider: provider}
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ReverseGeocode returns the address for (lat, lon) and whether it came from
// the cache. Out-of-range coordinates are rejected; a cold cache with an
// unreachable provider yields ErrProviderUnavailable.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Address, bool, error) {
	if !ValidCoords(lat, lon) {
		return nil, false, &ValidationError{Msg: "lat must be in [-90,90] and lon in [-180,180]"}
	}

	if addr, ok, err := s.cache.Get(ctx, lat, lon); err == nil && ok {
		return addr, true, nil
	} else if err != nil {
		slog.Warn("geocode cache get failed", "err", err)
	}

	addr, err := s.provider.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Put(ctx, lat, lon, *addr); err != nil {
		slog.Warn("geocode cache put failed", "err", err)
	}
	return addr, false, nil
}
