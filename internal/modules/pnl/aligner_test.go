package pnl

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAlignPrice(t *testing.T) {
	series := domain.PriceSeries{
		{Date: d("2024-01-07"), Price: 100},
		{Date: d("2024-01-14"), Price: 110},
		{Date: d("2024-01-21"), Price: 120},
	}

	tests := []struct {
		name string
		date string
		want float64
	}{
		{"exact match", "2024-01-14", 110},
		{"between points takes the earlier", "2024-01-10", 100},
		{"after last point takes the last", "2024-02-01", 120},
		{"first point", "2024-01-07", 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AlignPrice(series, d(tc.date))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAlignPrice_BeforeSeries(t *testing.T) {
	series := domain.PriceSeries{
		{Date: d("2024-01-07"), Price: 100},
	}

	_, err := AlignPrice(series, d("2024-01-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoPriceBefore))
}

func TestAlignPrice_EmptySeries(t *testing.T) {
	_, err := AlignPrice(domain.PriceSeries{}, d("2024-01-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoPriceBefore))
}

func TestAlignPrice_UnsortedSeries(t *testing.T) {
	// Lookup must not trust provider ordering
	series := domain.PriceSeries{
		{Date: d("2024-01-21"), Price: 120},
		{Date: d("2024-01-07"), Price: 100},
		{Date: d("2024-01-14"), Price: 110},
	}

	got, err := AlignPrice(series, d("2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, 110.0, got)
}

func TestAlignPrice_DuplicateDatesCollapseToMean(t *testing.T) {
	series := domain.PriceSeries{
		{Date: d("2024-01-07"), Price: 100},
		{Date: d("2024-01-07"), Price: 120},
	}

	got, err := AlignPrice(series, d("2024-01-07"))
	require.NoError(t, err)
	assert.InDelta(t, 110.0, got, 1e-9)
}
