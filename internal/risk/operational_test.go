package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/internal/domain"
)

func TestBusinessIndicatorComponentBucketing(t *testing.T) {
	// Entirely within bucket 1 (<= 1e9): weight 0.12.
	assert.InDelta(t, 0.12*5e8, businessIndicatorComponent(5e8), 1e-6)

	// Spans buckets 1 and 2.
	bi := 1.5e9 // 1e9 at 0.12 + 0.5e9 at 0.15
	want := 0.12*1e9 + 0.15*0.5e9
	assert.InDelta(t, want, businessIndicatorComponent(bi), 1e-6)
}

func TestInternalLossMultiplierNoHacksIsOne(t *testing.T) {
	days := []int64{0, 86400, 172800}
	bic := []float64{10, 10, 10}
	out := internalLossMultiplier(days, nil, bic)
	assert.Equal(t, []float64{1, 1, 1}, out)
}

func TestInternalLossMultiplierZeroBICIsOne(t *testing.T) {
	days := []int64{0, 86400}
	bic := []float64{0, 0}
	hacks := []domain.HackEvent{{Date: time.Unix(0, 0).UTC(), Amount: 5e6}}
	out := internalLossMultiplier(days, hacks, bic)
	assert.Equal(t, []float64{1, 1}, out)
}

func TestInternalLossMultiplierRisesWithHackLoss(t *testing.T) {
	day0 := int64(0)
	days := []int64{day0, day0 + 86400, day0 + 2*86400}
	bic := []float64{1e6, 1e6, 1e6}
	hacks := []domain.HackEvent{{Date: time.Unix(day0, 0).UTC(), Amount: 5e6}}

	out := internalLossMultiplier(days, hacks, bic)
	for _, v := range out {
		assert.Greater(t, v, 1.0) // above the no-hack multiplier of 1
	}
	assert.Equal(t, out[0], out[1]) // loss stays in the rolling-365 window
	assert.Equal(t, out[1], out[2])
}

func TestElementwiseMax(t *testing.T) {
	out := elementwiseMax([]float64{1, 5, 3}, []float64{4, 2, 3})
	assert.Equal(t, []float64{4, 5, 3}, out)
}
