package charts

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

type fakeStore struct {
	purchases []domain.Purchase
	err       error
}

func (f *fakeStore) ListAll() ([]domain.Purchase, error) { return f.purchases, f.err }
func (f *fakeStore) Insert(p domain.Purchase) error      { return nil }
func (f *fakeStore) DeleteAll() error                    { return nil }

type fakePrices struct {
	series    domain.PriceSeries
	err       error
	gotStart  time.Time
	gotCalled bool
}

func (f *fakePrices) GetSeries(providerID string, start time.Time) (domain.PriceSeries, error) {
	f.gotCalled = true
	f.gotStart = start
	return f.series, f.err
}

func (f *fakePrices) GetCurrent(providerID string) (float64, error) { return 0, f.err }

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestGetPriceHistory(t *testing.T) {
	store := &fakeStore{purchases: []domain.Purchase{
		{ID: "p1", Date: d("2023-06-01"), Amount: 0.5, PriceCHF: 25000},
		{ID: "p2", Date: d("2023-01-15"), Amount: 0.2, PriceCHF: 20000},
	}}
	prices := &fakePrices{series: domain.PriceSeries{
		{Date: d("2023-01-08"), Price: 19000},
		{Date: d("2023-01-15"), Price: 20500},
	}}

	svc := NewService(store, prices, zerolog.Nop())

	history, err := svc.GetPriceHistory()
	require.NoError(t, err)

	// Window starts at the earliest purchase
	assert.Equal(t, d("2023-01-15"), prices.gotStart)

	require.Len(t, history.Series, 2)
	assert.Equal(t, "2023-01-08", history.Series[0].Time)
	assert.Equal(t, 19000.0, history.Series[0].Value)

	require.Len(t, history.Purchases, 2)
	assert.Equal(t, "2023-06-01", history.Purchases[0].Time)
	assert.Equal(t, 12500.0, history.Purchases[0].InvestedCHF)
}

func TestGetPriceHistory_EmptyLedger(t *testing.T) {
	prices := &fakePrices{series: domain.PriceSeries{
		{Date: d("2024-01-07"), Price: 60000},
	}}

	svc := NewService(&fakeStore{}, prices, zerolog.Nop())

	history, err := svc.GetPriceHistory()
	require.NoError(t, err)

	// Zero start lets the provider choose its default window
	assert.True(t, prices.gotCalled)
	assert.True(t, prices.gotStart.IsZero())

	assert.Len(t, history.Series, 1)
	assert.Empty(t, history.Purchases)
}

func TestGetPriceHistory_DataUnavailable(t *testing.T) {
	prices := &fakePrices{err: domain.ErrDataUnavailable}

	svc := NewService(&fakeStore{}, prices, zerolog.Nop())

	_, err := svc.GetPriceHistory()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}
