package purchases

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// Repository persists purchases in the ledger database.
// Implements domain.PurchaseStore.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new purchase repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "purchases").Logger(),
	}
}

// ListAll returns every purchase ordered by date ascending, then creation
// time, so evaluations and charts see a stable chronological list.
func (r *Repository) ListAll() ([]domain.Purchase, error) {
	rows, err := r.db.Query(`
		SELECT id, date, amount, price_chf, created_at
		FROM purchases
		ORDER BY date ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		var dateStr string
		var createdAt int64

		if err := rows.Scan(&p.ID, &dateStr, &p.Amount, &p.PriceCHF, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}

		p.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt purchase date %q: %w", dateStr, err)
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()

		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return purchases, nil
}

// Insert stores a new purchase. The caller assigns the ID.
func (r *Repository) Insert(p domain.Purchase) error {
	_, err := r.db.Exec(`
		INSERT INTO purchases (id, date, amount, price_chf, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Date.UTC().Format("2006-01-02"), p.Amount, p.PriceCHF, p.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	r.log.Info().
		Str("id", p.ID).
		Str("date", p.Date.Format("2006-01-02")).
		Float64("amount", p.Amount).
		Float64("price_chf", p.PriceCHF).
		Msg("Purchase recorded")

	return nil
}

// DeleteAll removes every purchase. This is the full-reset operation and the
// only mutation besides Insert the ledger supports.
func (r *Repository) DeleteAll() error {
	result, err := r.db.Exec("DELETE FROM purchases")
	if err != nil {
		return fmt.Errorf("failed to delete purchases: %w", err)
	}

	deleted, _ := result.RowsAffected()
	r.log.Warn().Int64("deleted", deleted).Msg("Purchase ledger reset")

	return nil
}

// Count returns the number of recorded purchases.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM purchases").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count purchases: %w", err)
	}
	return count, nil
}

// EarliestDate returns the date of the oldest purchase, or false when the
// ledger is empty. Used to size the market data window.
func (r *Repository) EarliestDate() (time.Time, bool, error) {
	var dateStr sql.NullString
	err := r.db.QueryRow("SELECT MIN(date) FROM purchases").Scan(&dateStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query earliest purchase: %w", err)
	}
	if !dateStr.Valid || dateStr.String == "" {
		return time.Time{}, false, nil
	}

	date, err := time.Parse("2006-01-02", dateStr.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt purchase date %q: %w", dateStr.String, err)
	}
	return date, true, nil
}
