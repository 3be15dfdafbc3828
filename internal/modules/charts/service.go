// Package charts assembles chart payloads: the Bitcoin price history with the
// recorded purchases overlaid as markers.
package charts

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

const bitcoinProviderID = "bitcoin"

// ChartPoint is a single point on the price history chart.
type ChartPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD format
	Value float64 `json:"value"` // CHF
}

// PurchaseMarker overlays a recorded purchase on the chart.
type PurchaseMarker struct {
	Time        string  `json:"time"` // YYYY-MM-DD format
	PriceCHF    float64 `json:"price_chf"`
	Amount      float64 `json:"amount"`
	InvestedCHF float64 `json:"invested_chf"`
}

// PriceHistory is the full chart payload.
type PriceHistory struct {
	Series    []ChartPoint     `json:"series"`
	Purchases []PurchaseMarker `json:"purchases"`
}

// Service provides chart data operations
type Service struct {
	store  domain.PurchaseStore
	prices domain.PriceSource
	log    zerolog.Logger
}

// NewService creates a new charts service
func NewService(store domain.PurchaseStore, prices domain.PriceSource, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		prices: prices,
		log:    log.With().Str("service", "charts").Logger(),
	}
}

// GetPriceHistory returns the weekly Bitcoin price series covering the ledger,
// plus one marker per purchase. The series window starts at the earliest
// purchase; with an empty ledger the provider's default window applies.
func (s *Service) GetPriceHistory() (*PriceHistory, error) {
	purchases, err := s.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	var start time.Time
	for _, p := range purchases {
		if start.IsZero() || p.Date.Before(start) {
			start = p.Date
		}
	}

	series, err := s.prices.GetSeries(bitcoinProviderID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	points := make([]ChartPoint, 0, len(series))
	for _, p := range series {
		points = append(points, ChartPoint{
			Time:  p.Date.Format("2006-01-02"),
			Value: p.Price,
		})
	}

	markers := make([]PurchaseMarker, 0, len(purchases))
	for _, p := range purchases {
		markers = append(markers, PurchaseMarker{
			Time:        p.Date.Format("2006-01-02"),
			PriceCHF:    p.PriceCHF,
			Amount:      p.Amount,
			InvestedCHF: p.InvestedCHF(),
		})
	}

	return &PriceHistory{Series: points, Purchases: markers}, nil
}
