package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/internal/domain"
)

func TestDrcRRAOIgnoresCash(t *testing.T) {
	f := NewEmptyFrame([]int64{1})
	f.Tokens["cash1"] = testToken("cash1", "p", "EEP21PP01USD", nil)
	f.USD["cash1"] = []float64{1000}

	f.Tokens["tok1"] = testToken("tok1", "counterparty", "EEP22G", nil)
	f.USD["tok1"] = []float64{100}

	ratings := map[string]domain.Rating{"counterparty": domain.RatingAAA}
	out := drcRRAO(f, ratings)

	want := 100 * (domain.RatingAAA.MarketDRCWeight() + 0.001)
	assert.InDelta(t, want, out[0], 1e-9)
}

func TestAggregateScenarioSingleBucketSingleSensitivity(t *testing.T) {
	sens := sensitivity{tokenID: "a", bucket: domain.CategoryEquity, delta: []float64{10}}
	byBucket := map[domain.Category][]sensitivity{domain.CategoryEquity: {sens}}
	sp := scenarioParams{weight: 0.7, rho: 0.075, gamma: 0.15}

	net := aggregateScenario(byBucket, 1, sp, func(s sensitivity) []float64 { return s.delta })
	assert.Len(t, net, 1)
	// Single sensitivity: crossSum is 0, so net == (weight*delta)^2.
	w := 0.7 * 10
	assert.InDelta(t, w*w, net[0], 1e-9)
}

func TestAggregateSensitivitiesEmptyIsZero(t *testing.T) {
	days := []int64{1, 2}
	out := aggregateSensitivities(days, nil)
	assert.Equal(t, []float64{0, 0}, out)
}
