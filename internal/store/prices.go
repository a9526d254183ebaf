package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aristath/car-engine/internal/domain"
)

// InsertPrices upserts a batch of prices, conflict-do-nothing on
// (token_id, timestamp) (spec.md §4.6 step 3).
func (s *Store) InsertPrices(ctx context.Context, prices []domain.Price) error {
	if len(prices) == 0 {
		return nil
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO prices (token_id, timestamp, usd)
			VALUES ($1, $2, $3)
			ON CONFLICT (token_id, timestamp) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare insert price: %w", err)
		}
		defer stmt.Close()

		for _, p := range prices {
			if _, err := stmt.ExecContext(ctx, p.TokenID, p.Timestamp, p.USD); err != nil {
				return fmt.Errorf("insert price %s@%d: %w", p.TokenID, p.Timestamp, err)
			}
		}
		return nil
	})
}

// PricesForToken returns all prices for a token ordered by timestamp
// (spec.md §4.1).
func (s *Store) PricesForToken(ctx context.Context, tokenID string) ([]domain.Price, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token_id, timestamp, usd FROM prices WHERE token_id = $1 ORDER BY timestamp
	`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", tokenID, err)
	}
	defer rows.Close()

	var out []domain.Price
	for rows.Next() {
		var p domain.Price
		if err := rows.Scan(&p.TokenID, &p.Timestamp, &p.USD); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ExistsPriceAt reports whether a price row exists at the exact timestamp
// (spec.md §4.4).
func (s *Store) ExistsPriceAt(ctx context.Context, tokenID string, ts int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM prices WHERE token_id = $1 AND timestamp = $2)
	`, tokenID, ts).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check price at %s@%d: %w", tokenID, ts, err)
	}
	return exists, nil
}
