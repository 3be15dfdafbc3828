// Package pnl computes profit/loss metrics for the purchase ledger and the
// what-if benchmark substitution. Everything here is pure computation over
// values handed in by the service layer; no I/O.
package pnl

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// AlignPrice returns the price in effect at date: the value of the latest
// series point dated at or before it. Providers promise a sorted series with
// distinct dates, but the lookup must not depend on that, so the series is
// sorted defensively and duplicate dates are collapsed to their mean first.
// Returns domain.ErrNoPriceBefore when every point is dated after date.
func AlignPrice(series domain.PriceSeries, date time.Time) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("%w: empty series for %s", domain.ErrNoPriceBefore, date.Format("2006-01-02"))
	}

	normalized := normalize(series)

	// Latest point at or before the target date
	day := date.UTC().Truncate(24 * time.Hour)
	idx := sort.Search(len(normalized), func(i int) bool {
		return normalized[i].Date.After(day)
	})
	if idx == 0 {
		return 0, fmt.Errorf("%w: series starts %s, wanted %s",
			domain.ErrNoPriceBefore,
			normalized[0].Date.Format("2006-01-02"),
			day.Format("2006-01-02"))
	}

	return normalized[idx-1].Price, nil
}

// normalize sorts a series ascending by date and collapses points sharing a
// date into a single point holding their mean price.
func normalize(series domain.PriceSeries) domain.PriceSeries {
	grouped := make(map[time.Time][]float64, len(series))
	for _, p := range series {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		grouped[day] = append(grouped[day], p.Price)
	}

	out := make(domain.PriceSeries, 0, len(grouped))
	for day, prices := range grouped {
		out = append(out, domain.PricePoint{Date: day, Price: stat.Mean(prices, nil)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}
