// Package yahoo provides S&P 500 benchmark prices via the Yahoo Finance chart
// API. Quotes come in USD; the client converts them to CHF with the live
// USDCHF=X rate before returning, so the computation layer never sees a
// foreign currency.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// ProviderID identifies this provider in cache keys and price_source labels.
const ProviderID = "sp500"

const (
	indexSymbol = "^GSPC"
	fxSymbol    = "USDCHF=X"

	defaultWindowDays = 365
	paddingDays       = 30
)

// Client for the Yahoo Finance chart API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
// baseURL is overridable for tests; empty means query1.finance.yahoo.com.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// ID implements domain.MarketDataProvider.
func (c *Client) ID() string {
	return ProviderID
}

// chartMeta, chartQuote and chartData mirror the subset of the v8 chart
// payload we consume.
type chartMeta struct {
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type chartQuote struct {
	Close []*float64 `json:"close"`
}

type chartData struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartResponse struct {
	Chart struct {
		Result []chartData `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries returns the S&P 500 daily closes from start to now, converted
// to CHF with the current exchange rate (matching how the tracker always
// displayed the benchmark: today's rate applied across the series).
func (c *Client) FetchSeries(start time.Time) (domain.PriceSeries, error) {
	if start.IsZero() {
		start = time.Now().AddDate(0, 0, -defaultWindowDays)
	} else {
		start = start.AddDate(0, 0, -paddingDays)
	}

	chart, err := c.fetchChart(indexSymbol, start, time.Now())
	if err != nil {
		return nil, err
	}

	rate, err := c.fetchUSDCHFRate()
	if err != nil {
		return nil, err
	}

	closes := chart.Indicators.Quote[0].Close
	series := make(domain.PriceSeries, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		if i >= len(closes) {
			break
		}
		if closes[i] == nil {
			// Holidays and half-days come back as nulls
			continue
		}
		series = append(series, domain.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Price: *closes[i] * rate,
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart for %s contained no closes", domain.ErrDataUnavailable, indexSymbol)
	}

	c.log.Info().
		Int("points", len(series)).
		Float64("usdchf", rate).
		Msg("Fetched benchmark history")

	return series, nil
}

// FetchCurrent returns the latest S&P 500 level in CHF.
func (c *Client) FetchCurrent() (float64, error) {
	chart, err := c.fetchChart(indexSymbol, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		return 0, err
	}

	price := chart.Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("%w: yahoo returned no market price for %s", domain.ErrDataUnavailable, indexSymbol)
	}

	rate, err := c.fetchUSDCHFRate()
	if err != nil {
		return 0, err
	}

	return price * rate, nil
}

// fetchUSDCHFRate returns the current USD to CHF conversion rate.
func (c *Client) fetchUSDCHFRate() (float64, error) {
	chart, err := c.fetchChart(fxSymbol, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		return 0, err
	}

	rate := chart.Meta.RegularMarketPrice
	if rate <= 0 {
		return 0, fmt.Errorf("%w: yahoo returned no rate for %s", domain.ErrDataUnavailable, fxSymbol)
	}

	return rate, nil
}

// fetchChart requests daily candles for symbol between period1 and period2.
func (c *Client) fetchChart(symbol string, from, to time.Time) (*chartData, error) {
	reqURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix(),
	)

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build yahoo request: %v", domain.ErrDataUnavailable, err)
	}
	// Yahoo rejects requests without a browser-ish user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; BoomerBitcoin/2.0)")

	c.log.Debug().Str("url", reqURL).Msg("Fetching chart")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo request failed: %v", domain.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo returned status %d for %s", domain.ErrDataUnavailable, resp.StatusCode, symbol)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse yahoo response: %v", domain.ErrDataUnavailable, err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo error for %s: %s", domain.ErrDataUnavailable, symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: empty yahoo chart for %s", domain.ErrDataUnavailable, symbol)
	}

	return &parsed.Chart.Result[0], nil
}
