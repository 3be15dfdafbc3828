// Package domain contains the core types shared across modules.
// It has no infrastructure dependencies: repositories, clients and services
// depend on domain, never the other way around.
package domain

import "time"

// Purchase is a single recorded Bitcoin buy. Purchases are immutable once
// stored; the only mutation the system supports is a full reset.
type Purchase struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`      // calendar day, UTC midnight
	Amount    float64   `json:"amount"`    // BTC bought, > 0
	PriceCHF  float64   `json:"price_chf"` // CHF paid per BTC, >= 0
	CreatedAt time.Time `json:"created_at"`
}

// InvestedCHF returns the capital deployed by this purchase.
func (p Purchase) InvestedCHF() float64 {
	return p.Amount * p.PriceCHF
}

// PricePoint is one currency-normalized observation in a price series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is a date-ordered sequence of price points. Providers are
// expected to return it sorted ascending with distinct dates, but consumers
// must not rely on that (see pnl.AlignPrice).
type PriceSeries []PricePoint

// PnLSummary holds the per-evaluation profit/loss metrics. It is derived and
// ephemeral: recomputed from (purchases, series, current prices) on every call
// and never persisted.
type PnLSummary struct {
	TotalProfitLoss  float64 `json:"total_profit_loss"`
	TotalInvestment  float64 `json:"total_investment"`
	PercentageChange float64 `json:"percentage_change"`

	BenchmarkProfitLoss       float64 `json:"benchmark_profit_loss"`
	BenchmarkPercentageChange float64 `json:"benchmark_percentage_change"`
	// BenchmarkExcluded counts purchases left out of the benchmark sum because
	// no usable benchmark price existed at their date.
	BenchmarkExcluded int `json:"benchmark_excluded"`

	CurrentPrice float64 `json:"current_price"`
	// CurrentPriceChangePct is the change of the current price versus the
	// earliest point of the fetched series.
	CurrentPriceChangePct float64 `json:"current_price_change_pct"`

	// Degraded is set when market data was unavailable and the metrics above
	// are zeroed or partial. Warnings carries one user-visible message per
	// failed data source.
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

// AlignedPurchase pairs a purchase with the benchmark price in effect at its
// date. Ephemeral, recomputed each evaluation.
type AlignedPurchase struct {
	Purchase        Purchase `json:"purchase"`
	PriceAtPurchase float64  `json:"price_at_purchase"`
	PriceSource     string   `json:"price_source"`
}
