package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayStart(t *testing.T) {
	noon := int64(1534377600 + 12*3600) // 2018-08-16 12:00 UTC
	assert.Equal(t, int64(1534377600), DayStart(noon))
	assert.Equal(t, int64(1534377600), DayStart(1534377600))
}

func TestGroupSumByDay(t *testing.T) {
	day := int64(1534377600)
	ts := []int64{day, day + 3600, day + 86400}
	vals := []float64{10, 5, -2}

	out := GroupSumByDay(ts, vals)
	assert.Equal(t, 15.0, out[day])
	assert.Equal(t, -2.0, out[day+86400])
}

func TestGroupLastByDay(t *testing.T) {
	day := int64(1534377600)
	ts := []int64{day, day + 1000, day + 500}
	vals := []float64{1, 3, 2}

	out := GroupLastByDay(ts, vals)
	// Highest timestamp in the day wins, not insertion order.
	assert.Equal(t, 3.0, out[day])
}

func TestReindexForwardFillsThenZeroFills(t *testing.T) {
	day := int64(1534377600)
	s := Series{day: 1, day + 2*86400: 3}

	out := Reindex(s, day, day+3*86400)
	assert.Equal(t, []float64{1, 1, 3, 3}, out)
}

func TestReindexLeadingGapIsZero(t *testing.T) {
	day := int64(1534377600)
	s := Series{day + 86400: 5}

	out := Reindex(s, day, day+2*86400)
	assert.Equal(t, []float64{0, 5, 5}, out)
}

func TestCumSum(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 0, 4}, CumSum([]float64{1, 2, -3, 4}))
}

func TestClampNonNegative(t *testing.T) {
	out, clamped := ClampNonNegative([]float64{5, -3, 1, -10, 2})
	assert.True(t, clamped)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestClampNonNegativeNoop(t *testing.T) {
	in := []float64{1, 2, 3}
	out, clamped := ClampNonNegative(in)
	assert.False(t, clamped)
	assert.Equal(t, in, out)
}

func TestDiff(t *testing.T) {
	out := Diff([]float64{1, 3, 2})
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 2.0, out[1])
	assert.Equal(t, -1.0, out[2])
}

func TestShift(t *testing.T) {
	out := Shift([]float64{1, 2, 3})
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, []float64{1, 2}, out[1:])
}

func TestRollingMedianMinPeriods(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := RollingMedian(values, 3, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 2.0, out[2])
	assert.Equal(t, 3.0, out[3])
	assert.Equal(t, 4.0, out[4])
}

func TestRollingSum(t *testing.T) {
	out := RollingSum([]float64{1, 1, 1, 1}, 2, 1)
	assert.Equal(t, []float64{1, 2, 2, 2}, out)
}

func TestRollingSumCentered(t *testing.T) {
	out := RollingSumCentered([]float64{1, 1, 1, 1, 1}, 3, 1)
	// index 2 sees [1,3] -> 3 values; edges see fewer.
	assert.Equal(t, 3.0, out[2])
	assert.Equal(t, 2.0, out[0])
}

func TestDivByZeroIsNaN(t *testing.T) {
	out := Div([]float64{10, 5}, []float64{2, 0})
	assert.Equal(t, 5.0, out[0])
	assert.True(t, math.IsNaN(out[1]))
}

func TestZeroNaN(t *testing.T) {
	out := ZeroNaN([]float64{1, math.NaN(), 3})
	assert.Equal(t, []float64{1, 0, 3}, out)
}

func TestDailyRange(t *testing.T) {
	out := DailyRange(100, 100)
	assert.Equal(t, []int64{100}, out)

	assert.Nil(t, DailyRange(200, 100))
}
