package clientdata

import "time"

// TTL constants for cached market data.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLPriceSeries - historical series change slowly relative to how often
	// the UI refreshes, so an hour of staleness is invisible.
	TTLPriceSeries = time.Hour

	// TTLCurrentPrice - the headline price needs to feel live.
	TTLCurrentPrice = time.Minute

	// StaleGrace - how long past expiry a cached value may still be served
	// when the upstream API is down. Beyond this bound the cache reports a
	// miss and the caller surfaces a data-unavailable error.
	StaleGrace = 24 * time.Hour
)
