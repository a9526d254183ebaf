package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/store"
)

// Engine runs the full CET1/CCR/Market/Operational RWA pipeline per
// protocol and upserts the resulting Assets series (spec.md §4.7.6).
type Engine struct {
	store *store.Store
	log   zerolog.Logger
}

// NewEngine builds a risk Engine.
func NewEngine(s *store.Store, log zerolog.Logger) *Engine {
	return &Engine{store: s, log: log.With().Str("component", "risk_engine").Logger()}
}

// RunAll computes CAR for every protocol with at least one treasury.
// Protocols are independent and run in parallel, at most 8 at a time
// (spec.md §4.7: "runs ... in parallel across protocols").
func (e *Engine) RunAll(ctx context.Context, asOf int64) error {
	protocols, err := e.store.ListProtocols(ctx, true)
	if err != nil {
		return fmt.Errorf("list protocols: %w", err)
	}

	ratings, err := e.ratingsByProtocol(ctx, protocols)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, 8)
	var wg sync.WaitGroup
	for _, p := range protocols {
		wg.Add(1)
		sem <- struct{}{}
		go func(p domain.Protocol) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := e.RunProtocol(ctx, p, ratings, asOf); err != nil {
				e.log.Error().Err(err).Str("protocol", p.ID).Msg("risk engine run failed")
			}
		}(p)
	}
	wg.Wait()
	return nil
}

func (e *Engine) ratingsByProtocol(ctx context.Context, protocols []domain.Protocol) (map[string]domain.Rating, error) {
	out := make(map[string]domain.Rating, len(protocols))
	for _, p := range protocols {
		out[p.ID] = p.Rating
	}
	// Counterparties may include protocols without a treasury; pull those
	// ratings too so CCR/Market weighting never defaults silently.
	all, err := e.store.ListProtocols(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list all protocols: %w", err)
	}
	for _, p := range all {
		if _, ok := out[p.ID]; !ok {
			out[p.ID] = p.Rating
		}
	}
	return out, nil
}

// RunProtocol computes and persists one protocol's CAR series.
func (e *Engine) RunProtocol(ctx context.Context, protocol domain.Protocol, ratings map[string]domain.Rating, asOf int64) error {
	treasuries, err := e.store.TreasuriesByProtocol(ctx, protocol.ID)
	if err != nil {
		return fmt.Errorf("load treasuries: %w", err)
	}
	if len(treasuries) == 0 {
		return nil
	}
	treasuryIDs := make([]string, len(treasuries))
	for i, t := range treasuries {
		treasuryIDs[i] = t.ID
	}

	tokens, err := e.store.AllTokens(ctx)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}

	frame, err := BuildBalanceFrame(ctx, e.store, treasuryIDs, tokens, asOf, e.log)
	if err != nil {
		return fmt.Errorf("build balance frame: %w", err)
	}
	if len(frame.Days) == 0 {
		return nil
	}

	cet1 := CET1(frame, protocol.ID)
	ccrRWA := CCRRWA(frame, ratings)
	marketRWA, err := MarketRWA(ctx, e.store, frame, ratings)
	if err != nil {
		return fmt.Errorf("market rwa: %w", err)
	}
	operationalRWA, err := OperationalRWA(ctx, e.store, frame, treasuryIDs, protocol.Addresses, protocol.Hacks)
	if err != nil {
		return fmt.Errorf("operational rwa: %w", err)
	}

	assets := make([]domain.Asset, 0, len(frame.Days))
	for i, day := range frame.Days {
		rwa := ccrRWA[i] + marketRWA[i] + operationalRWA[i]
		if math.IsNaN(cet1[i]) || math.IsNaN(rwa) {
			continue
		}
		if rwa == 0 {
			continue
		}
		car := cet1[i] / rwa
		assets = append(assets, domain.Asset{
			ProtocolID:     protocol.ID,
			Timestamp:      day,
			CET1:           formatDecimal(cet1[i]),
			CreditRWA:      formatDecimal(ccrRWA[i]),
			MarketRWA:      formatDecimal(marketRWA[i]),
			OperationalRWA: formatDecimal(operationalRWA[i]),
			RWA:            formatDecimal(rwa),
			CAR:            car,
		})
	}

	if err := e.store.UpsertAssets(ctx, assets); err != nil {
		return fmt.Errorf("upsert assets: %w", err)
	}
	e.log.Info().Str("protocol", protocol.ID).Int("days", len(assets)).Msg("risk engine run complete")
	return nil
}

// RunNow is a convenience wrapper used by the scheduler's calculate_car
// job (spec.md §4.8).
func (e *Engine) RunNow(ctx context.Context) error {
	return e.RunAll(ctx, time.Now().Unix())
}

// formatDecimal renders a computed RWA/CET1 figure as a decimal-safe
// string (spec.md §9), using shopspring/decimal rather than float
// formatting to avoid binary-float string artefacts.
func formatDecimal(v float64) string {
	return decimal.NewFromFloat(v).String()
}
