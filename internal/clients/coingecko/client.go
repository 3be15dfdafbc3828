// Package coingecko provides Bitcoin price fetching from the CoinGecko API.
// All prices are requested in CHF, so no FX conversion is needed downstream.
package coingecko

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// ProviderID identifies this provider in cache keys and price_source labels.
const ProviderID = "bitcoin"

// defaultWindowDays is the fallback history window when no start date is
// given (no purchases recorded yet).
const defaultWindowDays = 365

// paddingDays is fetched before the earliest purchase so the chart has some
// lead-in and as-of alignment never starts exactly at the boundary.
const paddingDays = 30

// Client for the CoinGecko API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new CoinGecko client.
// baseURL is overridable for tests; empty means the public API.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "coingecko").Logger(),
	}
}

// ID implements domain.MarketDataProvider.
func (c *Client) ID() string {
	return ProviderID
}

// FetchSeries returns the BTC/CHF price history from start to now, resampled
// to weekly averages. CoinGecko returns daily rows; the weekly resample keeps
// chart payloads small without losing the shape of the curve.
func (c *Client) FetchSeries(start time.Time) (domain.PriceSeries, error) {
	days := defaultWindowDays
	if !start.IsZero() {
		days = int(time.Since(start).Hours()/24) + paddingDays
		if days < 1 {
			days = 1
		}
	}

	url := fmt.Sprintf("%s/coins/bitcoin/market_chart?vs_currency=chf&days=%d", c.baseURL, days)
	c.log.Debug().Str("url", url).Msg("Fetching price history")

	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko request failed: %v", domain.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: coingecko returned status %d", domain.ErrDataUnavailable, resp.StatusCode)
	}

	// Prices come as [timestamp_ms, price] pairs
	var result struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse coingecko response: %v", domain.ErrDataUnavailable, err)
	}

	daily := make(domain.PriceSeries, 0, len(result.Prices))
	for _, pair := range result.Prices {
		ts := time.UnixMilli(int64(pair[0])).UTC()
		daily = append(daily, domain.PricePoint{
			Date:  ts.Truncate(24 * time.Hour),
			Price: pair[1],
		})
	}

	series := resampleWeekly(daily)

	c.log.Info().
		Int("daily_points", len(daily)).
		Int("weekly_points", len(series)).
		Int("days", days).
		Msg("Fetched price history")

	return series, nil
}

// FetchCurrent returns the live BTC/CHF price.
func (c *Client) FetchCurrent() (float64, error) {
	url := c.baseURL + "/simple/price?ids=bitcoin&vs_currencies=chf"

	resp, err := c.client.Get(url)
	if err != nil {
		return 0, fmt.Errorf("%w: coingecko request failed: %v", domain.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: coingecko returned status %d", domain.ErrDataUnavailable, resp.StatusCode)
	}

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: failed to parse coingecko response: %v", domain.ErrDataUnavailable, err)
	}

	price, ok := result["bitcoin"]["chf"]
	if !ok {
		return 0, fmt.Errorf("%w: chf price missing from coingecko response", domain.ErrDataUnavailable)
	}

	c.log.Debug().Float64("price", price).Msg("Fetched current price")

	return price, nil
}

// resampleWeekly collapses daily points into one point per calendar week,
// dated at the week's Sunday and priced at the arithmetic mean of the week's
// observations. Output is sorted ascending by date.
func resampleWeekly(daily domain.PriceSeries) domain.PriceSeries {
	if len(daily) == 0 {
		return domain.PriceSeries{}
	}

	buckets := make(map[time.Time][]float64)
	for _, p := range daily {
		buckets[weekEnd(p.Date)] = append(buckets[weekEnd(p.Date)], p.Price)
	}

	series := make(domain.PriceSeries, 0, len(buckets))
	for date, prices := range buckets {
		series = append(series, domain.PricePoint{
			Date:  date,
			Price: stat.Mean(prices, nil),
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}

// weekEnd returns the Sunday at or after d (UTC midnight).
func weekEnd(d time.Time) time.Time {
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, offset)
}
