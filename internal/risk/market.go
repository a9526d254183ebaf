package risk

import (
	"context"
	"math"

	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/risk/timeseries"
	"github.com/aristath/car-engine/internal/store"
)

type scenarioParams struct {
	weight, rho, gamma float64
}

var marketScenarios = []scenarioParams{
	{0.7, 0.075, 0.15},
	{0.7, 0.09375, 0.1875},
	{0.7, 0.05625, 0.1125},
}

// sensitivity holds one token's delta/vega series plus its
// underlying's bucket category, used by the FRTB-SA-style
// aggregation in marketSensitivities.
type sensitivity struct {
	tokenID  string
	bucket   domain.Category
	delta    []float64
	vega     []float64
}

// MarketRWA computes the market-risk RWA series: FRTB-style delta/vega
// sensitivities bucketed by underlying category plus a default-risk
// (DRC+RRAO) component, over tokens with a non-nil `underlying`
// (spec.md §4.7.4).
func MarketRWA(ctx context.Context, s *store.Store, frame *Frame, ratings map[string]domain.Rating) ([]float64, error) {
	sensitivities, err := collectSensitivities(ctx, s, frame)
	if err != nil {
		return nil, err
	}
	sens := aggregateSensitivities(frame.Days, sensitivities)
	drc := drcRRAO(frame, ratings)

	out := make([]float64, len(frame.Days))
	for i := range out {
		out[i] = 12.5 * (sens[i] + drc[i])
	}
	return out, nil
}

// collectSensitivities computes per-token delta_t/vega_t series for
// every non-cash token with a non-nil underlying (spec.md §4.7.4).
func collectSensitivities(ctx context.Context, s *store.Store, frame *Frame) ([]sensitivity, error) {
	start, end := frame.Days[0], frame.Days[len(frame.Days)-1]

	var out []sensitivity
	for id, tok := range frame.Tokens {
		if tok.Category() == domain.CategoryCash || tok.Underlying == nil {
			continue
		}
		underlyingID := *tok.Underlying

		vT, err := PriceSeries(ctx, s, id, start, end)
		if err != nil {
			return nil, err
		}
		sU, err := PriceSeries(ctx, s, underlyingID, start, end)
		if err != nil {
			return nil, err
		}

		balance := frame.Raw[id]
		q := timeseries.Div(balance, vT)

		dV := timeseries.Diff(vT)
		dS := timeseries.Diff(sU)
		rawDelta := timeseries.Div(dV, dS)
		medDelta := timeseries.RollingMedian(rawDelta, 365, 1)
		delta := timeseries.Mul(timeseries.ZeroNaN(medDelta), timeseries.ZeroNaN(q))

		logS := make([]float64, len(sU))
		for i, v := range sU {
			logS[i] = math.Log(v)
		}
		dLogS := timeseries.Diff(logS)
		sq := make([]float64, len(dLogS))
		for i, v := range dLogS {
			sq[i] = v * v
		}
		sigmaSq := timeseries.RollingSumCentered(sq, 3, 1)
		sigma := make([]float64, len(sigmaSq))
		for i, v := range sigmaSq {
			sigma[i] = math.Sqrt(v)
		}

		dSigma := timeseries.Diff(sigma)
		rawVega := timeseries.Div(dV, dSigma)
		medVega := timeseries.RollingMedian(rawVega, 365, 1)
		vega := timeseries.Mul(timeseries.Mul(timeseries.ZeroNaN(medVega), timeseries.ZeroNaN(sigma)), timeseries.ZeroNaN(q))

		bucket := domain.CategoryUnknown
		if underlying, ok := frame.Tokens[underlyingID]; ok {
			bucket = underlying.Category()
		}

		out = append(out, sensitivity{tokenID: id, bucket: bucket, delta: delta, vega: vega})
	}
	return out, nil
}

// aggregateSensitivities implements the FRTB-SA bucket/scenario
// aggregation: within-bucket correlation rho, cross-bucket correlation
// gamma, three scenarios, element-wise max (spec.md §4.7.4).
func aggregateSensitivities(days []int64, sens []sensitivity) []float64 {
	n := len(days)
	out := make([]float64, n)

	byBucket := make(map[domain.Category][]sensitivity)
	for _, sv := range sens {
		byBucket[sv.bucket] = append(byBucket[sv.bucket], sv)
	}

	for _, sp := range marketScenarios {
		deltaNet := aggregateScenario(byBucket, n, sp, func(s sensitivity) []float64 { return s.delta })
		vegaNet := aggregateScenario(byBucket, n, sp, func(s sensitivity) []float64 { return s.vega })
		for i := 0; i < n; i++ {
			v := math.Sqrt(math.Max(deltaNet[i], 0)) + math.Sqrt(math.Max(vegaNet[i], 0))
			if v > out[i] {
				out[i] = v
			}
		}
	}
	return out
}

// aggregateScenario runs one (weight, rho, gamma) scenario over
// either the delta or vega series (selected by `extract`), returning
// the cross-bucket net series.
func aggregateScenario(byBucket map[domain.Category][]sensitivity, n int, sp scenarioParams, extract func(sensitivity) []float64) []float64 {
	type bucketSeries struct {
		deltaK []float64 // sqrt term per day
		deltaS []float64 // signed sum per day
	}
	buckets := make(map[domain.Category]bucketSeries)

	for bucket, group := range byBucket {
		weighted := make([][]float64, len(group))
		for gi, sv := range group {
			w := make([]float64, n)
			series := extract(sv)
			for i := 0; i < n; i++ {
				w[i] = sp.weight * nanToZero(series[i])
			}
			weighted[gi] = w
		}

		sqSum := make([]float64, n)
		signedSum := make([]float64, n)
		for _, w := range weighted {
			for i := 0; i < n; i++ {
				sqSum[i] += w[i] * w[i]
				signedSum[i] += w[i]
			}
		}
		crossSum := make([]float64, n)
		for i := 0; i < n; i++ {
			crossSum[i] = signedSum[i]*signedSum[i] - sqSum[i]
		}

		deltaK := make([]float64, n)
		for i := 0; i < n; i++ {
			deltaK[i] = math.Sqrt(math.Max(sqSum[i]+sp.rho*crossSum[i], 0))
		}
		buckets[bucket] = bucketSeries{deltaK: deltaK, deltaS: signedSum}
	}

	net := make([]float64, n)
	bucketSqSum := make([]float64, n)
	bucketCrossSum := make([]float64, n)
	var sSums [][]float64
	for _, bs := range buckets {
		for i := 0; i < n; i++ {
			bucketSqSum[i] += bs.deltaK[i] * bs.deltaK[i]
		}
		sSums = append(sSums, bs.deltaS)
	}
	for i := 0; i < n; i++ {
		var total float64
		for _, s := range sSums {
			total += s[i]
		}
		var sqOfSums float64
		for _, s := range sSums {
			sqOfSums += s[i] * s[i]
		}
		bucketCrossSum[i] = total*total - sqOfSums
	}
	for i := 0; i < n; i++ {
		net[i] = bucketSqSum[i] + sp.gamma*bucketCrossSum[i]
	}
	return net
}

// drcRRAO computes the default-risk-plus-add-on component: non-cash
// USD balances weighted by counterparty rating, plus a flat 0.001
// residual-add-on (spec.md §4.7.4).
func drcRRAO(frame *Frame, ratings map[string]domain.Rating) []float64 {
	n := len(frame.Days)
	out := make([]float64, n)
	for id, tok := range frame.Tokens {
		if tok.Category() == domain.CategoryCash {
			continue
		}
		weight := ratings[tok.ProtocolID].MarketDRCWeight()
		col := frame.USD[id]
		for i := 0; i < n; i++ {
			out[i] += col[i] * (weight + 0.001)
		}
	}
	return out
}
