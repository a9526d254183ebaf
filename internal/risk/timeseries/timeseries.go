// Package timeseries implements the daily-bucketing, forward-fill and
// rolling-window primitives the Risk Engine is built from (spec.md
// §4.7). It adapts the teacher's gonum-based statistics helpers
// (pkg/formulas/stats.go) from single-shot descriptive stats to the
// windowed, grid-aligned series operations the engine's formulas need.
package timeseries

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DayStart floors a unix timestamp to the start of its UTC calendar day.
func DayStart(ts int64) int64 {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// Series is a sparse day -> value map, populated in arbitrary order and
// then made dense via Reindex.
type Series map[int64]float64

// GroupSumByDay buckets (timestamp, value) observations into daily net
// flow, summing same-day observations (spec.md §4.7.1 "group by
// calendar day").
func GroupSumByDay(timestamps []int64, values []float64) Series {
	out := make(Series)
	for i, ts := range timestamps {
		out[DayStart(ts)] += values[i]
	}
	return out
}

// GroupLastByDay buckets (timestamp, value) observations into daily
// last-observed value, used for price series (spec.md §4.7.1
// get_usd_prices: "take last-in-day").
func GroupLastByDay(timestamps []int64, values []float64) Series {
	type obs struct {
		ts  int64
		val float64
	}
	byDay := make(map[int64]obs)
	for i, ts := range timestamps {
		day := DayStart(ts)
		if prev, ok := byDay[day]; !ok || ts >= prev.ts {
			byDay[day] = obs{ts: ts, val: values[i]}
		}
	}
	out := make(Series, len(byDay))
	for day, o := range byDay {
		out[day] = o.val
	}
	return out
}

// Days returns the sorted ascending list of days present in s.
func (s Series) Days() []int64 {
	days := make([]int64, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// DailyRange returns every daily grid point from start to end inclusive.
func DailyRange(start, end int64) []int64 {
	const interval = 86400
	if end < start {
		return nil
	}
	out := make([]int64, 0, (end-start)/interval+1)
	for d := start; d <= end; d += interval {
		out = append(out, d)
	}
	return out
}

// Reindex aligns s onto the daily grid [start, end], forward-filling
// gaps and filling any remaining leading NaN with 0 (spec.md §4.7.1:
// "forward-fill NaN, fill remaining NaN with 0, reindex to a daily
// range from the earliest day up to yesterday").
func Reindex(s Series, start, end int64) []float64 {
	grid := DailyRange(start, end)
	out := make([]float64, len(grid))
	last := math.NaN()
	haveLast := false
	for i, day := range grid {
		if v, ok := s[day]; ok {
			last = v
			haveLast = true
		}
		if haveLast {
			out[i] = last
		} else {
			out[i] = 0
		}
	}
	return out
}

// CumSum returns the running total of values.
func CumSum(values []float64) []float64 {
	out := make([]float64, len(values))
	var running float64
	for i, v := range values {
		running += v
		out[i] = running
	}
	return out
}

// ClampNonNegative enforces the daily-balance non-negativity invariant
// (spec.md §3, §4.7.1): while any day is negative, shift the deficit
// forward from the first negative index onward. Returns the clamped
// series and whether any clamping occurred.
func ClampNonNegative(values []float64) ([]float64, bool) {
	out := append([]float64(nil), values...)
	clamped := false
	for {
		idx := -1
		for i, v := range out {
			if v < 0 {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		clamped = true
		deficit := -out[idx]
		for j := idx; j < len(out); j++ {
			out[j] += deficit
		}
	}
	return out, clamped
}

// Diff returns the first difference of values: diff[0] is NaN (no
// prior observation), diff[i] = values[i] - values[i-1] for i>0.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	out[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

// Shift returns values shifted forward by one position; the leading
// slot becomes NaN, mirroring pandas' Series.shift(1).
func Shift(values []float64) []float64 {
	out := make([]float64, len(values))
	out[0] = math.NaN()
	copy(out[1:], values[:len(values)-1])
	return out
}

// RollingMedian computes the trailing median over a window ending at
// each index, skipping NaNs, requiring at least minPeriods
// non-NaN observations (else NaN) — spec.md §4.7.4 delta_t/vega_t.
func RollingMedian(values []float64, window, minPeriods int) []float64 {
	return rollingApply(values, window, minPeriods, false, median)
}

// RollingSum computes the trailing rolling sum over a window ending at
// each index (spec.md §4.7.5 SC, §4.7.6 FC).
func RollingSum(values []float64, window, minPeriods int) []float64 {
	return rollingApply(values, window, minPeriods, false, sum)
}

// RollingSumCentered computes a centred rolling sum: the window for
// index i spans [i-window/2, i+window/2] (spec.md §4.7.4 sigma_u: "3,
// centred").
func RollingSumCentered(values []float64, window, minPeriods int) []float64 {
	return rollingApply(values, window, minPeriods, true, sum)
}

func rollingApply(values []float64, window, minPeriods int, centered bool, agg func([]float64) float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	half := window / 2
	for i := 0; i < n; i++ {
		var lo, hi int
		if centered {
			lo, hi = i-half, i+half
		} else {
			lo, hi = i-window+1, i
		}
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		var buf []float64
		for j := lo; j <= hi; j++ {
			if !math.IsNaN(values[j]) {
				buf = append(buf, values[j])
			}
		}
		if len(buf) < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = agg(buf)
	}
	return out
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if n := len(sorted); n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Div returns element-wise a/b, producing NaN where b is zero.
func Div(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		if b[i] == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = a[i] / b[i]
		}
	}
	return out
}

// Mul returns element-wise a*b.
func Mul(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

// Add returns element-wise a+b.
func Add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// ZeroNaN replaces every NaN in values with 0.
func ZeroNaN(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = 0
		} else {
			out[i] = v
		}
	}
	return out
}
