package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aristath/car-engine/internal/apperr"
	"github.com/aristath/car-engine/internal/domain"
)

// UpsertProtocol creates or updates a Protocol row, keyed on id.
func (s *Store) UpsertProtocol(ctx context.Context, p domain.Protocol) error {
	hacksJSON, err := json.Marshal(p.Hacks)
	if err != nil {
		return fmt.Errorf("marshal hacks: %w", err)
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO protocols (id, rating, addresses, hacks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			rating = EXCLUDED.rating,
			addresses = EXCLUDED.addresses,
			hacks = EXCLUDED.hacks,
			updated_at = EXCLUDED.updated_at
	`, p.ID, string(p.Rating), pq.Array(p.Addresses), hacksJSON, now)
	if err != nil {
		return fmt.Errorf("upsert protocol %s: %w", p.ID, err)
	}
	return nil
}

// GetProtocol fetches a single protocol by id.
func (s *Store) GetProtocol(ctx context.Context, id string) (domain.Protocol, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, rating, addresses, hacks, created_at, updated_at
		FROM protocols WHERE id = $1
	`, id)
	p, err := scanProtocol(row)
	if err == sql.ErrNoRows {
		return domain.Protocol{}, apperr.NewNotFoundError("protocol", id)
	}
	return p, err
}

// ListProtocols returns protocols, optionally restricted to those with at
// least one treasury (spec.md §4.1).
func (s *Store) ListProtocols(ctx context.Context, onlyWithTreasury bool) ([]domain.Protocol, error) {
	query := `SELECT id, rating, addresses, hacks, created_at, updated_at FROM protocols`
	if onlyWithTreasury {
		query += ` WHERE EXISTS (SELECT 1 FROM treasuries t WHERE t.protocol_id = protocols.id)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list protocols: %w", err)
	}
	defer rows.Close()

	var out []domain.Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProtocol(row scanner) (domain.Protocol, error) {
	var p domain.Protocol
	var rating string
	var addresses pq.StringArray
	var hacksJSON []byte

	if err := row.Scan(&p.ID, &rating, &addresses, &hacksJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Protocol{}, err
	}
	p.Rating = domain.Rating(rating)
	p.Addresses = []string(addresses)
	if len(hacksJSON) > 0 {
		if err := json.Unmarshal(hacksJSON, &p.Hacks); err != nil {
			return domain.Protocol{}, fmt.Errorf("unmarshal hacks: %w", err)
		}
	}
	return p, nil
}

// UpsertTreasury creates the treasury row or, if it already exists under a
// different protocol, re-points it at the new owning protocol (spec.md §8
// scenario 5: "updates the Treasury's protocol_id").
func (s *Store) UpsertTreasury(ctx context.Context, t domain.Treasury) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO treasuries (id, protocol_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			protocol_id = EXCLUDED.protocol_id,
			updated_at = EXCLUDED.updated_at
	`, t.ID, t.ProtocolID, now)
	if err != nil {
		return fmt.Errorf("upsert treasury %s: %w", t.ID, err)
	}
	return nil
}

// TreasuriesByProtocol returns all treasury ids owned by a protocol.
func (s *Store) TreasuriesByProtocol(ctx context.Context, protocolID string) ([]domain.Treasury, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, protocol_id, created_at, updated_at FROM treasuries WHERE protocol_id = $1 ORDER BY id
	`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("list treasuries for %s: %w", protocolID, err)
	}
	defer rows.Close()

	var out []domain.Treasury
	for rows.Next() {
		var t domain.Treasury
		if err := rows.Scan(&t.ID, &t.ProtocolID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AllTreasuries returns every treasury row, used by the cold-start
// snapshot pass (spec.md §4.4).
func (s *Store) AllTreasuries(ctx context.Context) ([]domain.Treasury, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, protocol_id, created_at, updated_at FROM treasuries ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list all treasuries: %w", err)
	}
	defer rows.Close()

	var out []domain.Treasury
	for rows.Next() {
		var t domain.Treasury
		if err := rows.Scan(&t.ID, &t.ProtocolID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
