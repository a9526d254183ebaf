package collector

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/clients/llama"
	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/planner"
	"github.com/aristath/car-engine/internal/store"
)

// pageSize is the price-snapshot page size (OFFSET granularity),
// spec.md §4.6.
const pageSize = 50

// tokenAddress resolves a token id to the on-chain address used when
// requesting historical prices from the oracle.
type tokenAddress func(tokenID string) (string, bool)

// PriceCollector drains one page of the price backlog: fetch without
// claim, batch-request historical prices, upsert, then delete exactly
// the requested snapshots on success (spec.md §4.6).
type PriceCollector struct {
	store        *store.Store
	llama        *llama.Client
	tokenAddress tokenAddress
	log          zerolog.Logger
}

// NewPriceCollector builds a PriceCollector.
func NewPriceCollector(s *store.Store, client *llama.Client, resolve tokenAddress, log zerolog.Logger) *PriceCollector {
	return &PriceCollector{
		store:        s,
		llama:        client,
		tokenAddress: resolve,
		log:          log.With().Str("component", "price_collector").Logger(),
	}
}

// RunPage processes one (offset, limit) page. Returns the number of
// snapshots seen, so the caller can decide whether to advance offset
// or stop.
func (c *PriceCollector) RunPage(ctx context.Context, offset int) (int, error) {
	page, err := c.store.ListPriceSnapshotPage(ctx, offset, pageSize)
	if err != nil {
		return 0, err
	}
	if len(page) == 0 {
		return 0, nil
	}

	requests := make(map[string][]int64)
	addressToToken := make(map[string]string)
	var requested []domain.PriceSnapshot
	for _, snap := range page {
		address, ok := c.tokenAddress(snap.TokenID)
		if !ok {
			continue
		}
		requests[address] = append(requests[address], snap.Timestamp)
		addressToToken[address] = snap.TokenID
		requested = append(requested, snap)
	}

	resp, err := c.llama.BatchHistorical(ctx, requests)
	if err != nil {
		c.log.Warn().Err(err).Msg("price collection failed, leaving snapshots in place")
		return len(page), nil
	}

	var prices []domain.Price
	for address, points := range resp {
		tokenID, ok := addressToToken[address]
		if !ok {
			continue
		}
		for _, p := range points {
			gridTS := snapToGrid(p.Timestamp, requests[address])
			prices = append(prices, domain.Price{TokenID: tokenID, Timestamp: gridTS, USD: p.USD})
		}
	}

	if err := c.store.InsertPrices(ctx, prices); err != nil {
		return len(page), err
	}
	if err := c.store.DeletePriceSnapshots(ctx, requested); err != nil {
		return len(page), err
	}
	return len(page), nil
}

// snapToGrid re-maps an oracle-returned timestamp back to the grid
// timestamp it answers, then clamps to the minimum requested
// timestamp (spec.md §4.6 step 3).
func snapToGrid(returned int64, requested []int64) int64 {
	grid := (returned / planner.Interval) * planner.Interval
	min := requested[0]
	for _, t := range requested {
		if t < min {
			min = t
		}
	}
	if grid < min {
		return min
	}
	return grid
}
