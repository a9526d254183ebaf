// Package risk implements the daily-balance and CET1/CCR/Market/
// Operational RWA pipeline (spec.md §4.7), adapting the teacher's
// formulas package (pkg/formulas) from single-security descriptive
// stats to a multi-token, multi-protocol aggregation pipeline.
package risk

import (
	"math"

	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/risk/timeseries"
)

// Frame is a daily balance matrix: Raw/USD columns keyed by token id,
// each aligned to the same Days grid (spec.md §4.7.1 matrix B / B$).
type Frame struct {
	Days   []int64
	Raw    map[string][]float64
	USD    map[string][]float64
	Tokens map[string]domain.Token
}

// NewEmptyFrame builds a Frame with no columns over the given days.
func NewEmptyFrame(days []int64) *Frame {
	return &Frame{Days: days, Raw: map[string][]float64{}, USD: map[string][]float64{}, Tokens: map[string]domain.Token{}}
}

// SumRaw returns the day-by-day sum of Raw columns whose token id is in ids.
func (f *Frame) SumRaw(ids []string) []float64 {
	out := make([]float64, len(f.Days))
	for _, id := range ids {
		col, ok := f.Raw[id]
		if !ok {
			continue
		}
		out = timeseries.Add(out, col)
	}
	return out
}

// SumUSD returns the day-by-day sum of USD columns whose token id is in ids.
func (f *Frame) SumUSD(ids []string) []float64 {
	out := make([]float64, len(f.Days))
	for _, id := range ids {
		col, ok := f.USD[id]
		if !ok {
			continue
		}
		out = timeseries.Add(out, col)
	}
	return out
}

// TokensByCategory returns the ids of tracked tokens (those present as
// Frame columns) matching any of the given categories.
func (f *Frame) TokensByCategory(cats ...domain.Category) []string {
	want := make(map[domain.Category]bool, len(cats))
	for _, c := range cats {
		want[c] = true
	}
	var out []string
	for id, tok := range f.Tokens {
		if want[tok.Category()] {
			out = append(out, id)
		}
	}
	return out
}

// NonCashTokens returns ids of tracked tokens outside the cash category.
func (f *Frame) NonCashTokens() []string {
	var out []string
	for id, tok := range f.Tokens {
		if tok.Category() != domain.CategoryCash {
			out = append(out, id)
		}
	}
	return out
}

// nanToZero is a small helper shared by the RWA components when a
// series must be treated as 0 once it is allowed to go NaN.
func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
