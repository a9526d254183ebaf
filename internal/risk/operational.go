package risk

import (
	"context"
	"math"
	"strconv"

	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/risk/timeseries"
	"github.com/aristath/car-engine/internal/store"
)

const (
	biBucket1Threshold = 1e9
	biBucket2Threshold = 3e10
)

// OperationalRWA computes the operational-risk RWA series: a services
// component (fee/operating income and expense), a financial component
// (PnL volatility), combined into a business-indicator component, then
// scaled by an internal-loss multiplier derived from historical hacks
// (spec.md §4.7.5).
func OperationalRWA(ctx context.Context, s *store.Store, frame *Frame, treasuries, protocolAddresses []string, hacks []domain.HackEvent) ([]float64, error) {
	sc, err := servicesComponent(ctx, s, frame, treasuries, protocolAddresses)
	if err != nil {
		return nil, err
	}
	fc := financialComponent(frame)

	n := len(frame.Days)
	bi := make([]float64, n)
	for i := 0; i < n; i++ {
		bi[i] = sc[i] + fc[i]
	}

	bic := make([]float64, n)
	for i := 0; i < n; i++ {
		bic[i] = businessIndicatorComponent(bi[i])
	}

	ilm := internalLossMultiplier(frame.Days, hacks, bic)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 12.5 * bic[i] * ilm[i]
	}
	return out, nil
}

// servicesComponent classifies every tracked transfer into
// fee/operating income and expense, USD-values it, then takes
// max(rolling_sum_365(fee_income), rolling_sum_365(fee_expense)) plus
// the equivalent for operating flows (spec.md §4.7.5 SC).
func servicesComponent(ctx context.Context, s *store.Store, frame *Frame, treasuries, protocolAddresses []string) ([]float64, error) {
	treasurySet := lowerSet(treasuries)
	protocolSet := lowerSet(protocolAddresses)
	treasuryList := treasuriesOf(treasurySet)
	start, end := frame.Days[0], frame.Days[len(frame.Days)-1]

	feeIncome := make(timeseries.Series)
	feeExpense := make(timeseries.Series)
	opIncome := make(timeseries.Series)
	opExpense := make(timeseries.Series)

	for id, tok := range frame.Tokens {
		transfers, err := s.TransfersForTokenTreasuries(ctx, id, treasuryList)
		if err != nil {
			return nil, err
		}
		scale := math.Pow10(tok.Decimals)

		var priceAt func(ts int64) float64
		if tok.Category() == domain.CategoryCash {
			priceAt = func(int64) float64 { return 1 }
		} else {
			series, err := PriceSeries(ctx, s, id, start, end)
			if err != nil {
				return nil, err
			}
			priceAt = func(ts int64) float64 {
				idx := int((timeseries.DayStart(ts) - start) / 86400)
				if idx < 0 || idx >= len(series) {
					return 0
				}
				return series[idx]
			}
		}

		for _, tr := range transfers {
			fromIn := treasurySet[tr.From]
			toIn := treasurySet[tr.To]
			if fromIn && toIn {
				continue
			}
			raw, err := strconv.ParseFloat(tr.Value, 64)
			if err != nil {
				continue
			}
			usd := (raw / scale) * priceAt(tr.Timestamp)
			day := timeseries.DayStart(tr.Timestamp)

			switch {
			case fromIn && protocolSet[tr.To]:
				feeExpense[day] += usd
			case fromIn:
				opExpense[day] += usd
			case toIn && protocolSet[tr.From]:
				feeIncome[day] += usd
			case toIn:
				opIncome[day] += usd
			}
		}
	}

	feeIncomeSeries := timeseries.Reindex(feeIncome, start, end)
	feeExpenseSeries := timeseries.Reindex(feeExpense, start, end)
	opIncomeSeries := timeseries.Reindex(opIncome, start, end)
	opExpenseSeries := timeseries.Reindex(opExpense, start, end)

	scFee := elementwiseMax(timeseries.RollingSum(feeIncomeSeries, 365, 1), timeseries.RollingSum(feeExpenseSeries, 365, 1))
	scOperating := elementwiseMax(timeseries.RollingSum(opIncomeSeries, 365, 1), timeseries.RollingSum(opExpenseSeries, 365, 1))

	n := len(frame.Days)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = nanToZero(scFee[i]) + nanToZero(scOperating[i])
	}
	return out, nil
}

// financialComponent computes FC = |rolling_sum_365(pnl_day)| where
// pnl_day sums, over non-cash tokens, yesterday's balance times
// today's price change (spec.md §4.7.5 FC).
func financialComponent(frame *Frame) []float64 {
	n := len(frame.Days)
	pnl := make([]float64, n)

	for id, tok := range frame.Tokens {
		if tok.Category() == domain.CategoryCash {
			continue
		}
		balance := frame.Raw[id]
		shifted := timeseries.Shift(balance)
		usd := frame.USD[id]
		if usd == nil {
			continue
		}
		priceDiff := priceDiffFromUSD(balance, usd)
		for i := 0; i < n; i++ {
			pnl[i] += nanToZero(shifted[i]) * nanToZero(priceDiff[i])
		}
	}

	rolled := timeseries.RollingSum(pnl, 365, 1)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Abs(nanToZero(rolled[i]))
	}
	return out
}

// priceDiffFromUSD recovers a token's implied daily price change from
// its balance and USD-balance series (price = usd/balance where
// balance != 0), then differences it.
func priceDiffFromUSD(balance, usd []float64) []float64 {
	price := timeseries.Div(usd, balance)
	return timeseries.Diff(price)
}

// businessIndicatorComponent applies the three-bucket BIC weighting
// (spec.md §4.7.5).
func businessIndicatorComponent(bi float64) float64 {
	b1 := math.Min(bi, biBucket1Threshold)
	b2 := math.Max(math.Min(bi, biBucket2Threshold)-biBucket1Threshold, 0)
	b3 := math.Max(bi-biBucket2Threshold, 0)
	return 0.12*b1 + 0.15*b2 + 0.18*b3
}

// internalLossMultiplier computes ILM per day from historical hack
// events resampled to the daily grid (spec.md §4.7.5).
func internalLossMultiplier(days []int64, hacks []domain.HackEvent, bic []float64) []float64 {
	n := len(days)
	out := make([]float64, n)
	if len(hacks) == 0 {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}

	// Resample hack amounts to daily (no forward-fill: a loss applies only
	// on the day it occurred).
	losses := make(map[int64]float64)
	for _, h := range hacks {
		losses[timeseries.DayStart(h.Date.Unix())] += h.Amount
	}
	start := days[0]
	dailyLoss := make([]float64, n)
	for d, amount := range losses {
		if idx := int((d - start) / 86400); idx >= 0 && idx < n {
			dailyLoss[idx] = amount
		}
	}

	yearlyLoss := timeseries.RollingSum(dailyLoss, 365, 1)

	for i := 0; i < n; i++ {
		lc := 15 * nanToZero(yearlyLoss[i])
		bicVal := bic[i]
		if bicVal == 0 {
			out[i] = 1.0
			continue
		}
		ratio := math.Pow(lc/bicVal, 0.8)
		ilm := math.Log(math.E - 1 + ratio)
		if math.IsInf(ilm, 0) || math.IsNaN(ilm) {
			out[i] = 0
			continue
		}
		out[i] = ilm
	}
	return out
}

func elementwiseMax(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = math.Max(nanToZero(a[i]), nanToZero(b[i]))
	}
	return out
}

func treasuriesOf(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
