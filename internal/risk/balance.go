package risk

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/risk/timeseries"
	"github.com/aristath/car-engine/internal/store"
)

// BuildBalanceFrame computes the daily balance matrix B and its
// USD-valued counterpart B$ for a protocol's treasuries, across every
// catalog token that ever touched them (spec.md §4.7.1).
func BuildBalanceFrame(ctx context.Context, s *store.Store, treasuries []string, tokens []domain.Token, asOf int64, log zerolog.Logger) (*Frame, error) {
	treasurySet := make(map[string]bool, len(treasuries))
	for _, t := range treasuries {
		treasurySet[t] = true
	}

	type tokenSeries struct {
		token  domain.Token
		series timeseries.Series
	}
	var perToken []tokenSeries
	var earliest int64

	for _, tok := range tokens {
		transfers, err := s.TransfersForTokenTreasuries(ctx, tok.ID, treasuries)
		if err != nil {
			return nil, fmt.Errorf("load transfers for token %s: %w", tok.ID, err)
		}
		if len(transfers) == 0 {
			continue
		}

		scale := math.Pow10(tok.Decimals)
		var days []int64
		var flows []float64
		for _, tr := range transfers {
			fromIn := treasurySet[tr.From]
			toIn := treasurySet[tr.To]
			if fromIn && toIn {
				continue // internal transfer
			}
			raw, err := strconv.ParseFloat(tr.Value, 64)
			if err != nil {
				continue
			}
			units := raw / scale
			var signed float64
			if fromIn {
				signed = -units
			} else {
				signed = units
			}
			days = append(days, tr.Timestamp)
			flows = append(flows, signed)
		}
		if len(days) == 0 {
			continue
		}

		grouped := timeseries.GroupSumByDay(days, flows)
		sortedDays := grouped.Days()
		dailyFlows := make([]float64, len(sortedDays))
		for i, d := range sortedDays {
			dailyFlows[i] = grouped[d]
		}
		cumulative := timeseries.CumSum(dailyFlows)
		clamped, didClamp := timeseries.ClampNonNegative(cumulative)
		if didClamp {
			log.Warn().Str("token", tok.ID).Msg("negative daily balance clamped forward")
		}

		series := make(timeseries.Series, len(sortedDays))
		for i, d := range sortedDays {
			series[d] = clamped[i]
		}
		perToken = append(perToken, tokenSeries{token: tok, series: series})

		if earliest == 0 || sortedDays[0] < earliest {
			earliest = sortedDays[0]
		}
	}

	if len(perToken) == 0 {
		return NewEmptyFrame(nil), nil
	}

	yesterday := timeseries.DayStart(asOf) - 86400
	grid := timeseries.DailyRange(earliest, yesterday)

	frame := &Frame{
		Days:   grid,
		Raw:    make(map[string][]float64, len(perToken)),
		USD:    make(map[string][]float64, len(perToken)),
		Tokens: make(map[string]domain.Token, len(perToken)),
	}

	for _, ts := range perToken {
		aligned := timeseries.Reindex(ts.series, earliest, yesterday)
		frame.Raw[ts.token.ID] = aligned
		frame.Tokens[ts.token.ID] = ts.token
	}

	if err := attachUSDBalances(ctx, s, frame, earliest, yesterday, log); err != nil {
		return nil, err
	}

	return frame, nil
}

// attachUSDBalances fills Frame.USD: cash columns copy Raw verbatim
// (already USD-denominated); other columns multiply by the token's
// daily USD price series (spec.md §4.7.1 get_usd_prices).
func attachUSDBalances(ctx context.Context, s *store.Store, frame *Frame, start, end int64, log zerolog.Logger) error {
	for id, tok := range frame.Tokens {
		raw := frame.Raw[id]
		if tok.Category() == domain.CategoryCash {
			frame.USD[id] = append([]float64(nil), raw...)
			continue
		}

		prices, err := s.PricesForToken(ctx, id)
		if err != nil {
			return fmt.Errorf("load prices for token %s: %w", id, err)
		}
		if len(prices) == 0 {
			log.Warn().Str("token", id).Msg("no price data, USD balance zeroed")
			frame.USD[id] = make([]float64, len(raw))
			continue
		}

		var timestamps []int64
		var values []float64
		for _, p := range prices {
			usd, err := strconv.ParseFloat(p.USD, 64)
			if err != nil {
				continue
			}
			timestamps = append(timestamps, p.Timestamp)
			values = append(values, usd)
		}

		priceSeries := timeseries.GroupLastByDay(timestamps, values)
		priceGrid := timeseries.Reindex(priceSeries, start, end)
		usd := timeseries.Mul(raw, priceGrid)
		frame.USD[id] = usd
	}
	return nil
}

// PriceSeries resolves a token's daily USD price aligned to
// [start,end], forward-filled then zero-filled on remaining gaps
// (spec.md §4.7.1 get_usd_prices).
func PriceSeries(ctx context.Context, s *store.Store, tokenID string, start, end int64) ([]float64, error) {
	prices, err := s.PricesForToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	var timestamps []int64
	var values []float64
	for _, p := range prices {
		v, err := strconv.ParseFloat(p.USD, 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, p.Timestamp)
		values = append(values, v)
	}
	series := timeseries.GroupLastByDay(timestamps, values)
	return timeseries.Reindex(series, start, end), nil
}

func lowerSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[strings.ToLower(id)] = true
	}
	return out
}
