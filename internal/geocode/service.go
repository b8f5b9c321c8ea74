package geocode

import (
	"context"
	"time"

	"go.uber.org/zap"

	"redbird/internal"
)

// Cache is the geocode store; storage.DB implements it.
type Cache interface {
	GetGeocode(address string) (*internal.GeocodeResult, error)
	UpsertGeocodes(results []internal.GeocodeResult) error
	SetMetadata(key, value string) error
}

type Searcher interface {
	Search(ctx context.Context, address string) (*internal.GeocodeResult, error)
}

type Service struct {
	cache  Cache
	client Searcher
	log    *zap.Logger
}

func NewService(cache Cache, client Searcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cache: cache, client: client, log: log}
}

type PinStats struct {
	Cached   int
	Fetched  int
	NotFound int
}

// BuildPins geocodes every house in listing order. Cached coordinates are
// reused; houses that cannot be placed inside the neighborhood are skipped.
func (s *Service) BuildPins(ctx context.Context, houses []internal.House) ([]internal.Pin, PinStats, error) {
	var stats PinStats
	pins := make([]internal.Pin, 0, len(houses))

	for _, h := range houses {
		result, err := s.cache.GetGeocode(h.Address)
		if err != nil {
			return nil, stats, err
		}
		if result != nil {
			stats.Cached++
		} else {
			result, err = s.client.Search(ctx, h.Address)
			if err != nil {
				return nil, stats, err
			}
			if result == nil {
				stats.NotFound++
				s.log.Warn("address not found", zap.String("title", h.Title), zap.String("address", h.Address))
				continue
			}
			if err := s.cache.UpsertGeocodes([]internal.GeocodeResult{*result}); err != nil {
				return nil, stats, err
			}
			stats.Fetched++
		}

		pins = append(pins, internal.Pin{
			Lat:       result.Lat,
			Lon:       result.Lon,
			HouseName: h.Title,
			Address:   h.Address,
			ThemeIcon: ThemeIcon(h.Title),
		})
	}

	_ = s.cache.SetMetadata("geocode.last_run", time.Now().UTC().Format(time.RFC3339))
	s.log.Info("pins built", zap.Int("pins", len(pins)), zap.Int("cached", stats.Cached), zap.Int("fetched", stats.Fetched), zap.Int("not_found", stats.NotFound))
	return pins, stats, nil
}
