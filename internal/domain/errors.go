package domain

import "errors"

// ErrDataUnavailable indicates a market data fetch failed and no usable cached
// value exists. Callers degrade gracefully (empty summary, warning) instead of
// failing the whole evaluation.
var ErrDataUnavailable = errors.New("market data unavailable")

// ErrNoPriceBefore indicates an as-of alignment was requested for a date that
// precedes every point in the series. The caller decides the fallback; the
// engine excludes such purchases from the benchmark sum and counts them.
var ErrNoPriceBefore = errors.New("no price at or before date")
