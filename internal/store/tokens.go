package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/car-engine/internal/apperr"
	"github.com/aristath/car-engine/internal/domain"
)

// UpsertToken creates or updates a Token row, keyed on id.
func (s *Store) UpsertToken(ctx context.Context, t domain.Token) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (id, protocol_id, symbol, itin, itc_eep, underlying, decimals, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE SET
			protocol_id = EXCLUDED.protocol_id,
			symbol = EXCLUDED.symbol,
			itin = EXCLUDED.itin,
			itc_eep = EXCLUDED.itc_eep,
			underlying = EXCLUDED.underlying,
			decimals = EXCLUDED.decimals,
			updated_at = EXCLUDED.updated_at
	`, t.ID, t.ProtocolID, t.Symbol, t.ITIN, t.ITCEEP, t.Underlying, t.Decimals, now)
	if err != nil {
		return fmt.Errorf("upsert token %s: %w", t.ID, err)
	}
	return nil
}

// GetToken fetches a single token by id.
func (s *Store) GetToken(ctx context.Context, id string) (domain.Token, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, protocol_id, symbol, itin, itc_eep, underlying, decimals, created_at, updated_at
		FROM tokens WHERE id = $1
	`, id)
	tok, err := scanToken(row)
	if err == sql.ErrNoRows {
		return domain.Token{}, apperr.NewNotFoundError("token", id)
	}
	return tok, err
}

// TokensByProtocol returns all tokens owned by a protocol.
func (s *Store) TokensByProtocol(ctx context.Context, protocolID string) ([]domain.Token, error) {
	return s.queryTokens(ctx, `
		SELECT id, protocol_id, symbol, itin, itc_eep, underlying, decimals, created_at, updated_at
		FROM tokens WHERE protocol_id = $1 ORDER BY id
	`, protocolID)
}

// TokensByCategories returns all tokens whose itc_eep code maps to one of
// the given risk categories.
func (s *Store) TokensByCategories(ctx context.Context, categories ...domain.Category) ([]domain.Token, error) {
	all, err := s.AllTokens(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[domain.Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var out []domain.Token
	for _, t := range all {
		if want[t.Category()] {
			out = append(out, t)
		}
	}
	return out, nil
}

// AllTokens returns every tracked token.
func (s *Store) AllTokens(ctx context.Context) ([]domain.Token, error) {
	return s.queryTokens(ctx, `
		SELECT id, protocol_id, symbol, itin, itc_eep, underlying, decimals, created_at, updated_at
		FROM tokens ORDER BY id
	`)
}

func (s *Store) queryTokens(ctx context.Context, query string, args ...interface{}) ([]domain.Token, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanToken(row scanner) (domain.Token, error) {
	var t domain.Token
	if err := row.Scan(&t.ID, &t.ProtocolID, &t.Symbol, &t.ITIN, &t.ITCEEP, &t.Underlying, &t.Decimals, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Token{}, err
	}
	return t, nil
}
