package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCET1CashOnly(t *testing.T) {
	f := NewEmptyFrame([]int64{1, 2})
	f.Tokens["cash1"] = testToken("cash1", "proto", "EEP21PP01USD", nil)
	f.Raw["cash1"] = []float64{100, 150}
	f.USD["cash1"] = []float64{100, 150}

	out := CET1(f, "proto")
	assert.Equal(t, []float64{100, 150}, out)
}

func TestCET1IncludesOwnEquityOnly(t *testing.T) {
	f := NewEmptyFrame([]int64{1})
	f.Tokens["cash1"] = testToken("cash1", "proto", "EEP21PP01USD", nil)
	f.Raw["cash1"] = []float64{50}
	f.USD["cash1"] = []float64{50}

	f.Tokens["own-share"] = testToken("own-share", "proto", "EEP22G", nil)
	f.USD["own-share"] = []float64{20}

	f.Tokens["other-share"] = testToken("other-share", "counterparty", "EEP22G", nil)
	f.USD["other-share"] = []float64{1000}

	out := CET1(f, "proto")
	assert.Equal(t, []float64{70}, out) // cash + own equity, NOT counterparty's
}

func TestCET1NoTokens(t *testing.T) {
	f := NewEmptyFrame([]int64{1, 2, 3})
	out := CET1(f, "proto")
	assert.Equal(t, []float64{0, 0, 0}, out)
}
