package domain

import "time"

// MarketDataProvider supplies a historical price series and a current scalar
// price for one tracked instrument, already normalized to CHF. Implementations
// live in internal/clients; the FX conversion for foreign-currency instruments
// happens inside the adapter, never in the computation layer.
type MarketDataProvider interface {
	// ID identifies the provider for cache keys and price_source labels.
	ID() string
	// FetchSeries returns prices from start (or a provider default window when
	// start is zero) to now, sorted ascending by date.
	FetchSeries(start time.Time) (PriceSeries, error)
	// FetchCurrent returns the latest known price.
	FetchCurrent() (float64, error)
}

// PurchaseStore is the durable store for purchase records. The computation
// layer receives it as an injected dependency, never a process-wide handle.
type PurchaseStore interface {
	ListAll() ([]Purchase, error)
	Insert(p Purchase) error
	DeleteAll() error
}

// PriceSource hands out cached series and current prices for a provider.
// Implemented by services.PriceCacheService.
type PriceSource interface {
	GetSeries(providerID string, start time.Time) (PriceSeries, error)
	GetCurrent(providerID string) (float64, error)
}
