package coingecko

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

func TestFetchCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "chf", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, `{"bitcoin":{"chf":51234.5}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	price, err := client.FetchCurrent()
	require.NoError(t, err)
	assert.Equal(t, 51234.5, price)
}

func TestFetchCurrent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	_, err := client.FetchCurrent()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestFetchCurrent_MissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bitcoin":{"usd":60000}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	_, err := client.FetchCurrent()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestFetchSeries(t *testing.T) {
	// Mon 2024-01-01 .. Wed 2024-01-03 (same week) plus Mon 2024-01-08
	day := func(d string) int64 {
		ts, err := time.Parse("2006-01-02", d)
		require.NoError(t, err)
		return ts.UnixMilli()
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "chf", r.URL.Query().Get("vs_currency"))
		assert.NotEmpty(t, r.URL.Query().Get("days"))
		fmt.Fprintf(w, `{"prices":[[%d,100],[%d,110],[%d,120],[%d,200]]}`,
			day("2024-01-01"), day("2024-01-02"), day("2024-01-03"), day("2024-01-08"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	series, err := client.FetchSeries(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, series, 2)

	// First week collapses to the mean of 100, 110, 120 on Sunday 2024-01-07
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.InDelta(t, 110.0, series[0].Price, 1e-9)

	// Second week holds the single Monday observation, dated Sunday 2024-01-14
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), series[1].Date)
	assert.InDelta(t, 200.0, series[1].Price, 1e-9)

	// Ascending by date
	assert.True(t, series[0].Date.Before(series[1].Date))
}

func TestFetchSeries_RequestsPaddedWindow(t *testing.T) {
	var gotDays string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		fmt.Fprint(w, `{"prices":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	start := time.Now().AddDate(0, 0, -100)
	_, err := client.FetchSeries(start)
	require.NoError(t, err)

	// 100 days back plus the 30 day lead-in
	assert.Equal(t, "130", gotDays)
}

func TestFetchSeries_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Immediately close so requests fail

	client := NewClient(srv.URL, zerolog.Nop())

	_, err := client.FetchSeries(time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestWeekEnd(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-01", "2024-01-07"}, // Monday -> following Sunday
		{"2024-01-06", "2024-01-07"}, // Saturday -> following Sunday
		{"2024-01-07", "2024-01-07"}, // Sunday maps to itself
	}

	for _, tc := range tests {
		in, err := time.Parse("2006-01-02", tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, weekEnd(in).Format("2006-01-02"), "weekEnd(%s)", tc.in)
	}
}

func TestResampleWeekly_Empty(t *testing.T) {
	assert.Empty(t, resampleWeekly(domain.PriceSeries{}))
}
