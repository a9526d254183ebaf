package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/internal/domain"
)

func strPtr(s string) *string { return &s }

func testToken(id, protocolID, itcEEP string, underlying *string) domain.Token {
	return domain.Token{ID: id, ProtocolID: protocolID, ITCEEP: itcEEP, Decimals: 18, Underlying: underlying}
}

func TestFrameSumRawSumUSD(t *testing.T) {
	days := []int64{1, 2, 3}
	f := NewEmptyFrame(days)
	f.Raw["a"] = []float64{1, 2, 3}
	f.Raw["b"] = []float64{10, 20, 30}
	f.USD["a"] = []float64{1, 2, 3}
	f.USD["b"] = []float64{5, 10, 15}

	assert.Equal(t, []float64{11, 22, 33}, f.SumRaw([]string{"a", "b"}))
	assert.Equal(t, []float64{6, 12, 18}, f.SumUSD([]string{"a", "b"}))
}

func TestFrameTokensByCategoryAndNonCash(t *testing.T) {
	f := NewEmptyFrame([]int64{1})
	f.Tokens["cash1"] = testToken("cash1", "p1", "EEP21PP01USD", nil)
	f.Tokens["eq1"] = testToken("eq1", "p1", "EEP22G", nil)

	cash := f.TokensByCategory(domain.CategoryCash)
	assert.ElementsMatch(t, []string{"cash1"}, cash)

	nonCash := f.NonCashTokens()
	assert.ElementsMatch(t, []string{"eq1"}, nonCash)
}
