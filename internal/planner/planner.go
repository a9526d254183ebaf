package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/catalog"
	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/store"
)

// Planner materialises the transfer- and price-snapshot backlogs.
type Planner struct {
	store  *store.Store
	loader *catalog.Loader
	log    zerolog.Logger
}

// NewPlanner builds a Planner over the given Store and Catalog Loader.
func NewPlanner(s *store.Store, loader *catalog.Loader, log zerolog.Logger) *Planner {
	return &Planner{store: s, loader: loader, log: log.With().Str("component", "planner").Logger()}
}

// InitializeSnapshots runs once on cold start: one wide TransferSnapshot
// per treasury spanning the whole grid, and one PriceSnapshot per
// (token, t) for every non-first grid point (spec.md §4.4).
func (p *Planner) InitializeSnapshots(ctx context.Context) error {
	grid := Grid(time.Now().Unix())
	if len(grid) == 0 {
		return nil
	}

	treasuries, err := p.store.AllTreasuries(ctx)
	if err != nil {
		return fmt.Errorf("list treasuries: %w", err)
	}

	transferSnaps := make([]domain.TransferSnapshot, 0, len(treasuries))
	for _, t := range treasuries {
		transferSnaps = append(transferSnaps, domain.TransferSnapshot{
			TreasuryID:    t.ID,
			FromTimestamp: grid[0],
			ToTimestamp:   grid[len(grid)-1],
		})
	}
	if err := p.store.EnqueueTransferSnapshots(ctx, transferSnaps); err != nil {
		return fmt.Errorf("enqueue initial transfer snapshots: %w", err)
	}

	tokens, err := p.store.AllTokens(ctx)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}

	priceSnaps := make([]domain.PriceSnapshot, 0, len(tokens)*(len(grid)-1))
	for _, tok := range tokens {
		for _, t := range grid[1:] {
			priceSnaps = append(priceSnaps, domain.PriceSnapshot{TokenID: tok.ID, Timestamp: t})
		}
	}
	if err := p.store.EnqueuePriceSnapshots(ctx, priceSnaps); err != nil {
		return fmt.Errorf("enqueue initial price snapshots: %w", err)
	}

	p.log.Info().Int("transfer_snapshots", len(transferSnaps)).Int("price_snapshots", len(priceSnaps)).Msg("initialized snapshot backlog")
	return nil
}

// UpdateSnapshots re-runs the Catalog Loader, then enqueues a
// TransferSnapshot for every (treasury, consecutive-grid-window) with
// no matching Transfer, and a PriceSnapshot for every (token, non-first
// grid point) with no matching Price row (spec.md §4.4).
func (p *Planner) UpdateSnapshots(ctx context.Context) error {
	if err := p.loader.Load(ctx); err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}

	grid := Grid(time.Now().Unix())
	if len(grid) < 2 {
		return nil
	}

	treasuries, err := p.store.AllTreasuries(ctx)
	if err != nil {
		return fmt.Errorf("list treasuries: %w", err)
	}

	var transferSnaps []domain.TransferSnapshot
	for i := 1; i < len(grid); i++ {
		from, to := grid[i-1], grid[i]
		for _, t := range treasuries {
			exists, err := p.store.ExistsTransferInWindow(ctx, t.ID, from, to)
			if err != nil {
				return fmt.Errorf("check transfer window %s [%d,%d): %w", t.ID, from, to, err)
			}
			if !exists {
				transferSnaps = append(transferSnaps, domain.TransferSnapshot{
					TreasuryID: t.ID, FromTimestamp: from, ToTimestamp: to,
				})
			}
		}
	}
	if err := p.store.EnqueueTransferSnapshots(ctx, transferSnaps); err != nil {
		return fmt.Errorf("enqueue transfer snapshots: %w", err)
	}

	tokens, err := p.store.AllTokens(ctx)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}

	var priceSnaps []domain.PriceSnapshot
	for _, tok := range tokens {
		for _, t := range grid[1:] {
			exists, err := p.store.ExistsPriceAt(ctx, tok.ID, t)
			if err != nil {
				return fmt.Errorf("check price at %s@%d: %w", tok.ID, t, err)
			}
			if !exists {
				priceSnaps = append(priceSnaps, domain.PriceSnapshot{TokenID: tok.ID, Timestamp: t})
			}
		}
	}
	if err := p.store.EnqueuePriceSnapshots(ctx, priceSnaps); err != nil {
		return fmt.Errorf("enqueue price snapshots: %w", err)
	}

	p.log.Info().Int("transfer_snapshots", len(transferSnaps)).Int("price_snapshots", len(priceSnaps)).Msg("updated snapshot backlog")
	return nil
}
