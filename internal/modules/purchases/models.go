// Package purchases manages the purchase ledger: validation, persistence and
// the HTTP surface for recording and resetting Bitcoin buys.
package purchases

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// ErrValidation marks client-side input errors so handlers can map them to 400.
var ErrValidation = errors.New("invalid purchase")

// CreateRequest is the POST /api/purchases payload.
type CreateRequest struct {
	Date     string  `json:"date"`      // YYYY-MM-DD
	Amount   float64 `json:"amount"`    // BTC, must be > 0
	PriceCHF float64 `json:"price_chf"` // CHF per BTC, must be >= 0
}

// Validate checks the request and returns the parsed purchase date.
// The date is normalized to midnight UTC; intraday time is never stored.
func (req CreateRequest) Validate() (time.Time, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD: %v", ErrValidation, err)
	}
	if req.Amount <= 0 {
		return time.Time{}, fmt.Errorf("%w: amount must be positive, got %f", ErrValidation, req.Amount)
	}
	if req.PriceCHF < 0 {
		return time.Time{}, fmt.Errorf("%w: price_chf must not be negative, got %f", ErrValidation, req.PriceCHF)
	}
	return date.UTC(), nil
}

// ToPurchase builds the domain record, assigning identity and creation time.
func (req CreateRequest) ToPurchase(id string, now time.Time) (domain.Purchase, error) {
	date, err := req.Validate()
	if err != nil {
		return domain.Purchase{}, err
	}
	return domain.Purchase{
		ID:        id,
		Date:      date,
		Amount:    req.Amount,
		PriceCHF:  req.PriceCHF,
		CreatedAt: now.UTC(),
	}, nil
}
