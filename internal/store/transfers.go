package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/aristath/car-engine/internal/domain"
)

// InsertTransfers upserts a batch of transfers, conflict-do-nothing on id
// (spec.md §4.5 step 5). Idempotent: inserting the same transfer twice is
// a no-op the second time.
func (s *Store) InsertTransfers(ctx context.Context, transfers []domain.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transfers (id, timestamp, block_number, token_id, from_address, to_address, value)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare insert transfer: %w", err)
		}
		defer stmt.Close()

		for _, tr := range transfers {
			if _, err := stmt.ExecContext(ctx, tr.ID, tr.Timestamp, tr.BlockNumber, tr.TokenID, tr.From, tr.To, tr.Value); err != nil {
				return fmt.Errorf("insert transfer %s: %w", tr.ID, err)
			}
		}
		return nil
	})
}

// TransfersForTokenTreasuries returns transfers for a token where either
// endpoint is in treasuryIDs, ordered deterministically by
// (timestamp, id) as spec.md §4.1 requires.
func (s *Store) TransfersForTokenTreasuries(ctx context.Context, tokenID string, treasuryIDs []string) ([]domain.Transfer, error) {
	if len(treasuryIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, block_number, token_id, from_address, to_address, value
		FROM transfers
		WHERE token_id = $1 AND (from_address = ANY($2) OR to_address = ANY($2))
		ORDER BY timestamp, id
	`, tokenID, pq.Array(treasuryIDs))
	if err != nil {
		return nil, fmt.Errorf("query transfers for token %s: %w", tokenID, err)
	}
	defer rows.Close()

	var out []domain.Transfer
	for rows.Next() {
		var tr domain.Transfer
		if err := rows.Scan(&tr.ID, &tr.Timestamp, &tr.BlockNumber, &tr.TokenID, &tr.From, &tr.To, &tr.Value); err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// ExistsTransferInWindow reports whether any transfer touching treasuryID
// exists with timestamp in [from, to) — used by the daily planner to
// decide whether a window is already complete (spec.md §4.4).
func (s *Store) ExistsTransferInWindow(ctx context.Context, treasuryID string, from, to int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transfers
			WHERE timestamp >= $1 AND timestamp < $2
			AND (from_address = $3 OR to_address = $3)
		)
	`, from, to, treasuryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transfer window for %s: %w", treasuryID, err)
	}
	return exists, nil
}
