package pnl

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// Provider IDs the evaluation depends on. They must match the registered
// client IDs in the price cache service.
const (
	bitcoinProviderID   = "bitcoin"
	benchmarkProviderID = "sp500"
)

// Service composes the purchase ledger with cached market data to produce
// the PnL summary. Evaluations are pure reads: nothing is persisted, calling
// twice against unchanged inputs yields identical numbers.
type Service struct {
	store  domain.PurchaseStore
	prices domain.PriceSource
	log    zerolog.Logger
}

// NewService creates a new PnL evaluation service.
func NewService(store domain.PurchaseStore, prices domain.PriceSource, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		prices: prices,
		log:    log.With().Str("service", "pnl").Logger(),
	}
}

// Evaluate computes the full summary for the current ledger.
// Market data failures degrade the summary (zeroed metrics plus a warning per
// failed source) instead of failing the evaluation; only a ledger read error
// is returned as an error.
func (s *Service) Evaluate() (domain.PnLSummary, error) {
	purchases, err := s.store.ListAll()
	if err != nil {
		return domain.PnLSummary{}, fmt.Errorf("failed to load purchases: %w", err)
	}

	if len(purchases) == 0 {
		return domain.PnLSummary{}, nil
	}

	summary := domain.PnLSummary{}
	start := earliestPurchaseDate(purchases)

	btcCurrent, err := s.prices.GetCurrent(bitcoinProviderID)
	if err != nil {
		s.log.Warn().Err(err).Msg("Bitcoin current price unavailable")
		summary.Degraded = true
		summary.Warnings = append(summary.Warnings, "Bitcoin price data is currently unavailable")
	} else {
		actual := ComputeActual(purchases, btcCurrent)
		summary.TotalInvestment = actual.TotalInvestment
		summary.TotalProfitLoss = actual.TotalProfitLoss
		summary.PercentageChange = actual.PercentageChange
		summary.CurrentPrice = btcCurrent

		if series, err := s.prices.GetSeries(bitcoinProviderID, start); err != nil {
			s.log.Warn().Err(err).Msg("Bitcoin price history unavailable")
			summary.Warnings = append(summary.Warnings, "Bitcoin price history is currently unavailable")
		} else {
			summary.CurrentPriceChangePct = ChangeVsSeriesStart(series, btcCurrent)
		}
	}

	benchSeries, seriesErr := s.prices.GetSeries(benchmarkProviderID, start)
	benchCurrent, currentErr := s.prices.GetCurrent(benchmarkProviderID)
	if seriesErr != nil || currentErr != nil {
		err := seriesErr
		if err == nil {
			err = currentErr
		}
		s.log.Warn().Err(err).Msg("Benchmark data unavailable")
		summary.Degraded = true
		summary.Warnings = append(summary.Warnings, "S&P 500 benchmark data is currently unavailable")
	} else {
		bench := ComputeBenchmark(purchases, benchSeries, benchCurrent)
		summary.BenchmarkProfitLoss = bench.ProfitLoss
		summary.BenchmarkPercentageChange = bench.PercentageChange
		summary.BenchmarkExcluded = bench.Excluded
	}

	return summary, nil
}
