package store

import (
	"context"
	"fmt"

	"github.com/aristath/car-engine/internal/domain"
)

// UpsertAsset writes one day's computed risk figures for a protocol
// (spec.md §4.7.6). Assets rows are fully derived, so re-running the
// Risk Engine simply overwrites them.
func (s *Store) UpsertAsset(ctx context.Context, a domain.Asset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (protocol_id, timestamp, cet1, credit_rwa, market_rwa, operational_rwa, rwa, car)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (protocol_id, timestamp) DO UPDATE SET
			cet1 = EXCLUDED.cet1,
			credit_rwa = EXCLUDED.credit_rwa,
			market_rwa = EXCLUDED.market_rwa,
			operational_rwa = EXCLUDED.operational_rwa,
			rwa = EXCLUDED.rwa,
			car = EXCLUDED.car
	`, a.ProtocolID, a.Timestamp, a.CET1, a.CreditRWA, a.MarketRWA, a.OperationalRWA, a.RWA, a.CAR)
	if err != nil {
		return fmt.Errorf("upsert asset %s@%d: %w", a.ProtocolID, a.Timestamp, err)
	}
	return nil
}

// UpsertAssets writes a batch of asset rows with one UpsertAsset call per
// row. The batch is not wrapped in a transaction: the first failing row
// stops the batch, and the rows before it stay written.
func (s *Store) UpsertAssets(ctx context.Context, assets []domain.Asset) error {
	for _, a := range assets {
		if err := s.UpsertAsset(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// AssetsForProtocol returns all computed asset rows for a protocol,
// ordered by timestamp.
func (s *Store) AssetsForProtocol(ctx context.Context, protocolID string) ([]domain.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT protocol_id, timestamp, cet1, credit_rwa, market_rwa, operational_rwa, rwa, car
		FROM assets WHERE protocol_id = $1 ORDER BY timestamp
	`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("list assets for %s: %w", protocolID, err)
	}
	defer rows.Close()

	var out []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ProtocolID, &a.Timestamp, &a.CET1, &a.CreditRWA, &a.MarketRWA, &a.OperationalRWA, &a.RWA, &a.CAR); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
