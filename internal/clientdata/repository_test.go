package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema creates all tables needed for testing
const testSchema = `
CREATE TABLE price_series (key TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE current_prices (key TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);

CREATE INDEX idx_price_series_expires ON price_series(expires_at);
CREATE INDEX idx_current_prices_expires ON current_prices(expires_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func TestStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	data := map[string]interface{}{
		"price": 51234.5,
	}

	err := repo.Store(TableCurrentPrices, "bitcoin:current", data, time.Minute)
	require.NoError(t, err)

	var storedData string
	var expiresAt int64
	err = db.QueryRow("SELECT data, expires_at FROM current_prices WHERE key = ?", "bitcoin:current").Scan(&storedData, &expiresAt)
	require.NoError(t, err)

	var parsed map[string]interface{}
	err = json.Unmarshal([]byte(storedData), &parsed)
	require.NoError(t, err)
	assert.Equal(t, 51234.5, parsed["price"])

	// Expiration is roughly one minute from now
	expectedExpires := time.Now().Add(time.Minute).Unix()
	assert.InDelta(t, expectedExpires, expiresAt, 5)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store(TableCurrentPrices, "bitcoin:current", map[string]string{"version": "1"}, time.Hour)
	require.NoError(t, err)
	err = repo.Store(TableCurrentPrices, "bitcoin:current", map[string]string{"version": "2"}, time.Hour)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM current_prices WHERE key = ?", "bitcoin:current").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	result, err := repo.GetIfFresh(TableCurrentPrices, "bitcoin:current")
	require.NoError(t, err)
	require.NotNil(t, result)

	var parsed map[string]string
	err = json.Unmarshal(result, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "2", parsed["version"])
}

func TestGetIfFresh_Fresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store(TablePriceSeries, "bitcoin:series:2024-01-01", map[string]string{"status": "fresh"}, time.Hour)
	require.NoError(t, err)

	result, err := repo.GetIfFresh(TablePriceSeries, "bitcoin:series:2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, result)

	var parsed map[string]string
	err = json.Unmarshal(result, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "fresh", parsed["status"])
}

func TestGetIfFresh_Expired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	// Insert expired data directly (expired 1 hour ago)
	expiredAt := time.Now().Add(-time.Hour).Unix()
	_, err := db.Exec(
		"INSERT INTO price_series (key, data, expires_at) VALUES (?, ?, ?)",
		"bitcoin:series:2024-01-01",
		`{"status":"expired"}`,
		expiredAt,
	)
	require.NoError(t, err)

	result, err := repo.GetIfFresh(TablePriceSeries, "bitcoin:series:2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, result, "Expected nil for expired data")
}

func TestGetStale_WithinGrace(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	// Expired 1 hour ago, grace is 24h: still usable as fallback
	expiredAt := time.Now().Add(-time.Hour).Unix()
	_, err := db.Exec(
		"INSERT INTO price_series (key, data, expires_at) VALUES (?, ?, ?)",
		"bitcoin:series:2024-01-01",
		`{"status":"stale_but_useful"}`,
		expiredAt,
	)
	require.NoError(t, err)

	result, err := repo.GetIfFresh(TablePriceSeries, "bitcoin:series:2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, result, "GetIfFresh should return nil for expired data")

	result, err = repo.GetStale(TablePriceSeries, "bitcoin:series:2024-01-01", StaleGrace)
	require.NoError(t, err)
	require.NotNil(t, result, "GetStale should return data within the grace bound")

	var parsed map[string]string
	err = json.Unmarshal(result, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "stale_but_useful", parsed["status"])
}

func TestGetStale_PastGrace(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	// Expired two days ago: past the 24h grace bound
	expiredAt := time.Now().Add(-48 * time.Hour).Unix()
	_, err := db.Exec(
		"INSERT INTO price_series (key, data, expires_at) VALUES (?, ?, ?)",
		"bitcoin:series:2024-01-01",
		`{"status":"too_old"}`,
		expiredAt,
	)
	require.NoError(t, err)

	result, err := repo.GetStale(TablePriceSeries, "bitcoin:series:2024-01-01", StaleGrace)
	require.NoError(t, err)
	assert.Nil(t, result, "GetStale should not return data past the grace bound")
}

func TestGet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	result, err := repo.GetIfFresh(TableCurrentPrices, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = repo.GetStale(TableCurrentPrices, "nonexistent", StaleGrace)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store(TableCurrentPrices, "sp500:current", map[string]string{"to_delete": "true"}, time.Hour)
	require.NoError(t, err)

	err = repo.Delete(TableCurrentPrices, "sp500:current")
	require.NoError(t, err)

	result, err := repo.GetIfFresh(TableCurrentPrices, "sp500:current")
	require.NoError(t, err)
	assert.Nil(t, result)

	// Deleting a non-existent key is not an error
	err = repo.Delete(TableCurrentPrices, "nonexistent")
	require.NoError(t, err)
}

func TestDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	pastGrace := now.Add(-StaleGrace - time.Hour).Unix()
	withinGrace := now.Add(-time.Hour).Unix()
	fresh := now.Add(time.Hour).Unix()

	for key, expiresAt := range map[string]int64{
		"bitcoin:series:2023-01-01": pastGrace,
		"sp500:series:2023-01-01":   pastGrace,
		"bitcoin:series:2024-06-01": withinGrace,
		"sp500:series:2024-06-01":   fresh,
	} {
		_, err := db.Exec("INSERT INTO price_series (key, data, expires_at) VALUES (?, ?, ?)", key, `{}`, expiresAt)
		require.NoError(t, err)
	}

	deleted, err := repo.DeleteExpired(TablePriceSeries, StaleGrace)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// Within-grace and fresh entries survive
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM price_series").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	pastGrace := now.Add(-StaleGrace - time.Hour).Unix()
	fresh := now.Add(time.Hour).Unix()

	_, err := db.Exec("INSERT INTO price_series (key, data, expires_at) VALUES (?, ?, ?)", "bitcoin:series:2023-01-01", `{}`, pastGrace)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO price_series (key, data, expires_at) VALUES (?, ?, ?)", "bitcoin:series:2024-06-01", `{}`, fresh)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO current_prices (key, data, expires_at) VALUES (?, ?, ?)", "bitcoin:current", `{}`, pastGrace)
	require.NoError(t, err)

	results, err := repo.DeleteAllExpired(StaleGrace)
	require.NoError(t, err)

	assert.Equal(t, int64(1), results[TablePriceSeries])
	assert.Equal(t, int64(1), results[TableCurrentPrices])
}

func TestInvalidTableName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Store", func(t *testing.T) {
		err := repo.Store("invalid_table; DROP TABLE price_series;--", "key", map[string]string{}, time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("GetIfFresh", func(t *testing.T) {
		_, err := repo.GetIfFresh("users", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("GetStale", func(t *testing.T) {
		_, err := repo.GetStale("passwords", "key", StaleGrace)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("Delete", func(t *testing.T) {
		err := repo.Delete("secrets", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		_, err := repo.DeleteExpired("nonexistent", StaleGrace)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})
}
