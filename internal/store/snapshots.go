package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aristath/car-engine/internal/domain"
)

const snapshotBatchSize = 100_000

// EnqueueTransferSnapshots inserts TransferSnapshot rows, conflict-do-nothing,
// batching writes at snapshotBatchSize rows per spec.md §4.4.
func (s *Store) EnqueueTransferSnapshots(ctx context.Context, snaps []domain.TransferSnapshot) error {
	for start := 0; start < len(snaps); start += snapshotBatchSize {
		end := start + snapshotBatchSize
		if end > len(snaps) {
			end = len(snaps)
		}
		if err := s.enqueueTransferSnapshotBatch(ctx, snaps[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) enqueueTransferSnapshotBatch(ctx context.Context, batch []domain.TransferSnapshot) error {
	if len(batch) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transfer_snapshots (treasury_id, from_timestamp, to_timestamp)
			VALUES ($1, $2, $3)
			ON CONFLICT (treasury_id, from_timestamp, to_timestamp) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare enqueue transfer snapshot: %w", err)
		}
		defer stmt.Close()

		for _, snap := range batch {
			if _, err := stmt.ExecContext(ctx, snap.TreasuryID, snap.FromTimestamp, snap.ToTimestamp); err != nil {
				return fmt.Errorf("enqueue transfer snapshot %+v: %w", snap, err)
			}
		}
		return nil
	})
}

// EnqueuePriceSnapshots inserts PriceSnapshot rows, conflict-do-nothing,
// batching writes at snapshotBatchSize rows.
func (s *Store) EnqueuePriceSnapshots(ctx context.Context, snaps []domain.PriceSnapshot) error {
	for start := 0; start < len(snaps); start += snapshotBatchSize {
		end := start + snapshotBatchSize
		if end > len(snaps) {
			end = len(snaps)
		}
		if err := s.enqueuePriceSnapshotBatch(ctx, snaps[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) enqueuePriceSnapshotBatch(ctx context.Context, batch []domain.PriceSnapshot) error {
	if len(batch) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO price_snapshots (token_id, timestamp)
			VALUES ($1, $2)
			ON CONFLICT (token_id, timestamp) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare enqueue price snapshot: %w", err)
		}
		defer stmt.Close()

		for _, snap := range batch {
			if _, err := stmt.ExecContext(ctx, snap.TokenID, snap.Timestamp); err != nil {
				return fmt.Errorf("enqueue price snapshot %+v: %w", snap, err)
			}
		}
		return nil
	})
}

// ClaimNextTransferSnapshot atomically removes and returns the
// lexicographically smallest pending TransferSnapshot ordered by
// (treasury_id, from_timestamp, to_timestamp), per spec.md §4.5. The
// SKIP LOCKED claim is what lets up to 8 collector instances run without
// double-claiming a row. Returns (zero, false, nil) when the backlog is
// empty.
func (s *Store) ClaimNextTransferSnapshot(ctx context.Context) (domain.TransferSnapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH next AS (
			SELECT treasury_id, from_timestamp, to_timestamp
			FROM transfer_snapshots
			ORDER BY treasury_id, from_timestamp, to_timestamp
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		DELETE FROM transfer_snapshots t
		USING next n
		WHERE t.treasury_id = n.treasury_id
			AND t.from_timestamp = n.from_timestamp
			AND t.to_timestamp = n.to_timestamp
		RETURNING t.treasury_id, t.from_timestamp, t.to_timestamp
	`)

	var snap domain.TransferSnapshot
	if err := row.Scan(&snap.TreasuryID, &snap.FromTimestamp, &snap.ToTimestamp); err != nil {
		if err == sql.ErrNoRows {
			return domain.TransferSnapshot{}, false, nil
		}
		return domain.TransferSnapshot{}, false, fmt.Errorf("claim transfer snapshot: %w", err)
	}
	return snap, true, nil
}

// ReinsertTransferSnapshot re-adds a previously-claimed snapshot on
// collector failure ("make transient and add" in spec.md §4.5/§9),
// so the next scheduler tick retries it.
func (s *Store) ReinsertTransferSnapshot(ctx context.Context, snap domain.TransferSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transfer_snapshots (treasury_id, from_timestamp, to_timestamp)
		VALUES ($1, $2, $3)
		ON CONFLICT (treasury_id, from_timestamp, to_timestamp) DO NOTHING
	`, snap.TreasuryID, snap.FromTimestamp, snap.ToTimestamp)
	if err != nil {
		return fmt.Errorf("reinsert transfer snapshot %+v: %w", snap, err)
	}
	return nil
}

// ListPriceSnapshotPage returns a page of pending PriceSnapshots ordered
// by (token_id, timestamp), per spec.md §4.6. Distinct (offset, limit)
// pairs address disjoint snapshots, letting up to 8 page-workers run
// without claiming.
func (s *Store) ListPriceSnapshotPage(ctx context.Context, offset, limit int) ([]domain.PriceSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token_id, timestamp FROM price_snapshots
		ORDER BY token_id, timestamp
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list price snapshot page: %w", err)
	}
	defer rows.Close()

	var out []domain.PriceSnapshot
	for rows.Next() {
		var snap domain.PriceSnapshot
		if err := rows.Scan(&snap.TokenID, &snap.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// DeletePriceSnapshots deletes exactly the given snapshot rows — the
// price collector's success signal (spec.md §4.6 step 4).
func (s *Store) DeletePriceSnapshots(ctx context.Context, snaps []domain.PriceSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			DELETE FROM price_snapshots WHERE token_id = $1 AND timestamp = $2
		`)
		if err != nil {
			return fmt.Errorf("prepare delete price snapshot: %w", err)
		}
		defer stmt.Close()

		for _, snap := range snaps {
			if _, err := stmt.ExecContext(ctx, snap.TokenID, snap.Timestamp); err != nil {
				return fmt.Errorf("delete price snapshot %+v: %w", snap, err)
			}
		}
		return nil
	})
}

// CountBacklog returns the total pending snapshot count across both
// tables.
func (s *Store) CountBacklog(ctx context.Context) (int, error) {
	var transferCount, priceCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfer_snapshots`).Scan(&transferCount); err != nil {
		return 0, fmt.Errorf("count transfer snapshots: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_snapshots`).Scan(&priceCount); err != nil {
		return 0, fmt.Errorf("count price snapshots: %w", err)
	}
	return transferCount + priceCount, nil
}
