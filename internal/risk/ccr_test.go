package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/internal/domain"
)

func TestCCRRWAIgnoresCashAndWeightsBadRating(t *testing.T) {
	f := NewEmptyFrame([]int64{1})
	f.Tokens["cash1"] = testToken("cash1", "proto", "EEP21PP01USD", nil)
	f.USD["cash1"] = []float64{1000}

	f.Tokens["tok1"] = testToken("tok1", "counterparty", "EEP22G", nil)
	f.USD["tok1"] = []float64{100}

	ratings := map[string]domain.Rating{"counterparty": domain.RatingAAA}
	out := CCRRWA(f, ratings)
	assert.Len(t, out, 1)
	assert.Greater(t, out[0], 0.0)

	// Worse rating -> strictly higher RWA for the same exposure.
	ratingsBad := map[string]domain.Rating{"counterparty": domain.RatingLower}
	outBad := CCRRWA(f, ratingsBad)
	assert.Greater(t, outBad[0], out[0])
}

func TestCCRRWAZeroExposureIsZero(t *testing.T) {
	f := NewEmptyFrame([]int64{1})
	ratings := map[string]domain.Rating{}
	out := CCRRWA(f, ratings)
	assert.Equal(t, []float64{0}, out)
}

func TestClipMultiplierClampsAtOneAndHandlesZeroAddon(t *testing.T) {
	assert.Equal(t, 0.0, clipMultiplier(100, 0))
	assert.LessOrEqual(t, clipMultiplier(1e9, 1), 1.0)
	assert.False(t, math.IsNaN(clipMultiplier(1e9, 1)))
}

func TestEntityCategoryUsesUnderlyingNotHeldTokens(t *testing.T) {
	f := NewEmptyFrame([]int64{1})
	f.Tokens["idx"] = testToken("idx", "p", "EEP23FD", nil) // the underlying, itself an index
	// A derivative referencing "idx" is categorised "derivative", not
	// "index" -- entityCategory must look at the underlying, not this.
	u := "idx"
	f.Tokens["deriv"] = testToken("deriv", "p", "EEP23DV", &u)

	assert.Equal(t, domain.CategoryIndex, entityCategory(f, "idx"))
	assert.Equal(t, domain.CategoryUnknown, entityCategory(f, ""))
	assert.Equal(t, domain.CategoryUnknown, entityCategory(f, "missing"))
}

func TestCounterpartyAddonUsesUnderlyingCategoryForIndexRho(t *testing.T) {
	indexFrame := NewEmptyFrame([]int64{1})
	indexFrame.Tokens["idx"] = testToken("idx", "p", "EEP23FD", nil) // underlying is an index
	u := "idx"
	indexFrame.Tokens["deriv1"] = testToken("deriv1", "p", "EEP23DV", &u)
	indexFrame.Tokens["deriv2"] = testToken("deriv2", "p", "EEP23DV", &u)
	indexFrame.USD["deriv1"] = []float64{100}
	indexFrame.USD["deriv2"] = []float64{100}
	indexAddon := counterpartyAddon(indexFrame, []string{"deriv1", "deriv2"})

	equityFrame := NewEmptyFrame([]int64{1})
	equityFrame.Tokens["idx"] = testToken("idx", "p", "EEP22G", nil) // underlying is plain equity
	equityFrame.Tokens["deriv1"] = testToken("deriv1", "p", "EEP23DV", &u)
	equityFrame.Tokens["deriv2"] = testToken("deriv2", "p", "EEP23DV", &u)
	equityFrame.USD["deriv1"] = []float64{100}
	equityFrame.USD["deriv2"] = []float64{100}
	equityAddon := counterpartyAddon(equityFrame, []string{"deriv1", "deriv2"})

	// Same held tokens and exposures, only the underlying's category
	// differs -- sf/rho (and thus the add-on) must differ too.
	assert.NotEqual(t, indexAddon[0], equityAddon[0])
}
