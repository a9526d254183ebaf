package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskWeightKnownRatings(t *testing.T) {
	assert.Equal(t, 0.2, RatingAAA.RiskWeight())
	assert.Equal(t, 0.2, RatingAA.RiskWeight())
	assert.Equal(t, 0.5, RatingA.RiskWeight())
	assert.Equal(t, 0.75, RatingBBB.RiskWeight())
	assert.Equal(t, 1.0, RatingBB.RiskWeight())
}

func TestRiskWeightUnknownFallsBackToHighest(t *testing.T) {
	assert.Equal(t, 1.5, Rating("").RiskWeight())
	assert.Equal(t, 1.5, Rating("junk").RiskWeight())
	assert.Equal(t, 1.5, RatingLower.RiskWeight())
}

func TestMarketDRCWeightMonotonicWithRatingQuality(t *testing.T) {
	assert.Less(t, RatingAAA.MarketDRCWeight(), RatingAA.MarketDRCWeight())
	assert.Less(t, RatingAA.MarketDRCWeight(), RatingA.MarketDRCWeight())
	assert.Less(t, RatingA.MarketDRCWeight(), RatingBBB.MarketDRCWeight())
	assert.Less(t, RatingBBB.MarketDRCWeight(), RatingBB.MarketDRCWeight())
	assert.Less(t, RatingBB.MarketDRCWeight(), RatingB.MarketDRCWeight())
	assert.Less(t, RatingB.MarketDRCWeight(), Rating("unrated").MarketDRCWeight())
}
