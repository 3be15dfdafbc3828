package pnl

import (
	"time"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// ActualResult holds the realized position metrics.
type ActualResult struct {
	TotalInvestment  float64
	CurrentValue     float64
	TotalProfitLoss  float64
	PercentageChange float64
}

// BenchmarkResult holds the what-if metrics: the same capital deployed into
// the benchmark on the same dates.
type BenchmarkResult struct {
	Invested         float64
	CurrentValue     float64
	ProfitLoss       float64
	PercentageChange float64
	// Excluded counts purchases skipped because the benchmark series had no
	// price at or before their date. Excluded capital is removed from Invested
	// so the comparison stays apples to apples.
	Excluded int
}

// ComputeActual derives position metrics from the ledger and the current
// price. An empty ledger yields all zeros, never a division error.
func ComputeActual(purchases []domain.Purchase, currentPrice float64) ActualResult {
	var res ActualResult
	for _, p := range purchases {
		res.TotalInvestment += p.InvestedCHF()
		res.CurrentValue += p.Amount * currentPrice
	}

	res.TotalProfitLoss = res.CurrentValue - res.TotalInvestment
	if res.TotalInvestment > 0 {
		res.PercentageChange = res.TotalProfitLoss / res.TotalInvestment * 100
	}

	return res
}

// ComputeBenchmark simulates deploying each purchase's capital into the
// benchmark at the price in effect on the purchase date. Purchases predating
// the benchmark series are excluded and counted, not silently clamped to the
// earliest available price.
func ComputeBenchmark(purchases []domain.Purchase, series domain.PriceSeries, currentPrice float64) BenchmarkResult {
	var res BenchmarkResult
	for _, p := range purchases {
		priceAt, err := AlignPrice(series, p.Date)
		if err != nil || priceAt <= 0 {
			res.Excluded++
			continue
		}

		invested := p.InvestedCHF()
		units := invested / priceAt

		res.Invested += invested
		res.CurrentValue += units * currentPrice
	}

	res.ProfitLoss = res.CurrentValue - res.Invested
	if res.Invested > 0 {
		res.PercentageChange = res.ProfitLoss / res.Invested * 100
	}

	return res
}

// AlignPurchases pairs each purchase with the benchmark price at its date,
// for the detailed breakdown view. Purchases without a usable price are
// omitted.
func AlignPurchases(purchases []domain.Purchase, series domain.PriceSeries, source string) []domain.AlignedPurchase {
	aligned := make([]domain.AlignedPurchase, 0, len(purchases))
	for _, p := range purchases {
		priceAt, err := AlignPrice(series, p.Date)
		if err != nil || priceAt <= 0 {
			continue
		}
		aligned = append(aligned, domain.AlignedPurchase{
			Purchase:        p,
			PriceAtPurchase: priceAt,
			PriceSource:     source,
		})
	}
	return aligned
}

// ChangeVsSeriesStart returns the percentage change of current against the
// earliest point of the series, or 0 when the series is empty or starts at 0.
func ChangeVsSeriesStart(series domain.PriceSeries, current float64) float64 {
	if len(series) == 0 {
		return 0
	}

	earliest := series[0]
	for _, p := range series[1:] {
		if p.Date.Before(earliest.Date) {
			earliest = p
		}
	}
	if earliest.Price <= 0 {
		return 0
	}

	return (current - earliest.Price) / earliest.Price * 100
}

// earliestPurchaseDate returns the oldest purchase date, or zero time for an
// empty list.
func earliestPurchaseDate(purchases []domain.Purchase) time.Time {
	var earliest time.Time
	for _, p := range purchases {
		if earliest.IsZero() || p.Date.Before(earliest) {
			earliest = p.Date
		}
	}
	return earliest
}
