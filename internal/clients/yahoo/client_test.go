package yahoo

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// chartServer serves canned v8 chart responses for ^GSPC and USDCHF=X.
func chartServer(t *testing.T, indexBody, fxBody string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"), "unexpected path %s", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		switch {
		case strings.Contains(r.URL.Path, "GSPC"):
			fmt.Fprint(w, indexBody)
		case strings.Contains(r.URL.Path, "USDCHF"):
			fmt.Fprint(w, fxBody)
		default:
			t.Errorf("unexpected symbol in path %s", r.URL.Path)
		}
	}))
}

func chartBody(price float64, timestamps []int64, closes []string) string {
	var sb strings.Builder
	sb.WriteString(`{"chart":{"result":[{"meta":{"regularMarketPrice":`)
	fmt.Fprintf(&sb, "%v", price)
	sb.WriteString(`},"timestamp":[`)
	for i, ts := range timestamps {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%d", ts)
	}
	sb.WriteString(`],"indicators":{"quote":[{"close":[`)
	sb.WriteString(strings.Join(closes, ","))
	sb.WriteString(`]}]}}],"error":null}}`)
	return sb.String()
}

func TestFetchSeries_ConvertsToCHF(t *testing.T) {
	ts1 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC).Unix()
	ts2 := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC).Unix()
	ts3 := time.Date(2024, 1, 4, 14, 30, 0, 0, time.UTC).Unix()

	indexBody := chartBody(4800, []int64{ts1, ts2, ts3}, []string{"4700", "null", "4750"})
	fxBody := chartBody(0.9, nil, nil)

	srv := chartServer(t, indexBody, fxBody)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	series, err := client.FetchSeries(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Null close (holiday) is skipped, prices multiplied by USDCHF rate
	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.InDelta(t, 4700*0.9, series[0].Price, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), series[1].Date)
	assert.InDelta(t, 4750*0.9, series[1].Price, 1e-9)
}

func TestFetchCurrent(t *testing.T) {
	indexBody := chartBody(5000, nil, []string{})
	fxBody := chartBody(0.88, nil, nil)

	srv := chartServer(t, indexBody, fxBody)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	price, err := client.FetchCurrent()
	require.NoError(t, err)
	assert.InDelta(t, 5000*0.88, price, 1e-9)
}

func TestFetchSeries_YahooError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	srv := chartServer(t, body, body)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	_, err := client.FetchSeries(time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
	assert.Contains(t, err.Error(), "No data found")
}

func TestFetchSeries_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	_, err := client.FetchSeries(time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestFetchCurrent_NoPrice(t *testing.T) {
	indexBody := chartBody(0, nil, []string{})
	srv := chartServer(t, indexBody, indexBody)
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	_, err := client.FetchCurrent()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}
