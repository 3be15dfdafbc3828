// Package services contains application services that compose clients,
// repositories and domain logic.
package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/clientdata"
	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// PriceCacheService provides cached market data with stale fallback.
// Lookup order per call:
//  1. Fresh cached value (within TTL) - no network
//  2. Provider fetch - stored with TTL on success
//  3. Stale cached value within the grace bound (stale data > no data)
//  4. domain.ErrDataUnavailable
//
// It is an explicit injected dependency, never process-wide state, so the
// computation layer stays testable without any network access.
type PriceCacheService struct {
	providers map[string]domain.MarketDataProvider
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewPriceCacheService creates a new price cache service wrapping the given
// providers.
func NewPriceCacheService(cacheRepo *clientdata.Repository, log zerolog.Logger, providers ...domain.MarketDataProvider) *PriceCacheService {
	m := make(map[string]domain.MarketDataProvider, len(providers))
	for _, p := range providers {
		m[p.ID()] = p
	}
	return &PriceCacheService{
		providers: m,
		cacheRepo: cacheRepo,
		log:       log.With().Str("service", "price_cache").Logger(),
	}
}

// cachedSeries is the structure stored in the price_series table.
type cachedSeries struct {
	Points domain.PriceSeries `json:"points"`
}

// cachedPrice is the structure stored in the current_prices table.
type cachedPrice struct {
	Price float64 `json:"price"`
}

// GetSeries returns the price series for providerID starting at start.
// The cache key includes the start date: a series fetched for one window is
// not a valid answer for another.
func (s *PriceCacheService) GetSeries(providerID string, start time.Time) (domain.PriceSeries, error) {
	provider, ok := s.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown market data provider: %s", providerID)
	}

	cacheKey := seriesKey(providerID, start)

	// Fresh cache hit: no network call
	if data, err := s.cacheRepo.GetIfFresh(clientdata.TablePriceSeries, cacheKey); err == nil && data != nil {
		var cached cachedSeries
		if err := json.Unmarshal(data, &cached); err == nil {
			s.log.Debug().Str("key", cacheKey).Int("points", len(cached.Points)).Msg("Series cache hit")
			return cached.Points, nil
		}
	}

	series, err := provider.FetchSeries(start)
	if err != nil {
		// Provider failed: fall back to a stale value inside the grace bound
		if stale, ok := s.staleSeries(cacheKey); ok {
			s.log.Warn().
				Err(err).
				Str("key", cacheKey).
				Msg("Provider fetch failed, using stale cached series")
			return stale, nil
		}
		return nil, err
	}

	if err := s.cacheRepo.Store(clientdata.TablePriceSeries, cacheKey, cachedSeries{Points: series}, clientdata.TTLPriceSeries); err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache series")
	}

	return series, nil
}

// GetCurrent returns the current price for providerID.
func (s *PriceCacheService) GetCurrent(providerID string) (float64, error) {
	provider, ok := s.providers[providerID]
	if !ok {
		return 0, fmt.Errorf("unknown market data provider: %s", providerID)
	}

	cacheKey := providerID + ":current"

	if data, err := s.cacheRepo.GetIfFresh(clientdata.TableCurrentPrices, cacheKey); err == nil && data != nil {
		var cached cachedPrice
		if err := json.Unmarshal(data, &cached); err == nil {
			s.log.Debug().Str("key", cacheKey).Float64("price", cached.Price).Msg("Current price cache hit")
			return cached.Price, nil
		}
	}

	price, err := provider.FetchCurrent()
	if err != nil {
		if stale, ok := s.stalePrice(cacheKey); ok {
			s.log.Warn().
				Err(err).
				Str("key", cacheKey).
				Float64("price", stale).
				Msg("Provider fetch failed, using stale cached price")
			return stale, nil
		}
		return 0, err
	}

	if err := s.cacheRepo.Store(clientdata.TableCurrentPrices, cacheKey, cachedPrice{Price: price}, clientdata.TTLCurrentPrice); err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache current price")
	}

	return price, nil
}

// staleSeries retrieves a cached series even if expired, as long as it is
// inside the grace bound.
func (s *PriceCacheService) staleSeries(cacheKey string) (domain.PriceSeries, bool) {
	data, err := s.cacheRepo.GetStale(clientdata.TablePriceSeries, cacheKey, clientdata.StaleGrace)
	if err != nil || data == nil {
		return nil, false
	}

	var cached cachedSeries
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return cached.Points, true
}

// stalePrice retrieves a cached price even if expired, as long as it is
// inside the grace bound.
func (s *PriceCacheService) stalePrice(cacheKey string) (float64, bool) {
	data, err := s.cacheRepo.GetStale(clientdata.TableCurrentPrices, cacheKey, clientdata.StaleGrace)
	if err != nil || data == nil {
		return 0, false
	}

	var cached cachedPrice
	if err := json.Unmarshal(data, &cached); err != nil {
		return 0, false
	}

	return cached.Price, true
}

func seriesKey(providerID string, start time.Time) string {
	if start.IsZero() {
		return providerID + ":series:all"
	}
	return providerID + ":series:" + start.UTC().Format("2006-01-02")
}
