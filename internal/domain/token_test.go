package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryForEEPKnownCodes(t *testing.T) {
	assert.Equal(t, CategoryCash, CategoryForEEP("EEP21PP01USD"))
	assert.Equal(t, CategoryEquity, CategoryForEEP("EEP22G"))
	assert.Equal(t, CategoryIndex, CategoryForEEP("EEP23FD"))
	assert.Equal(t, CategoryCommodity, CategoryForEEP("EEP23A"))
	assert.Equal(t, CategoryFX, CategoryForEEP("EEP21PP01EUR"))
	assert.Equal(t, CategorySettlement, CategoryForEEP("EEP22S"))
	assert.Equal(t, CategoryDerivative, CategoryForEEP("EEP23DV"))
}

func TestCategoryForEEPUnknown(t *testing.T) {
	assert.Equal(t, CategoryUnknown, CategoryForEEP(""))
	assert.Equal(t, CategoryUnknown, CategoryForEEP("not-a-real-code"))
}

func TestTokenCategoryDelegatesToITCEEP(t *testing.T) {
	tok := Token{ITCEEP: "EEP22G"}
	assert.Equal(t, CategoryEquity, tok.Category())
}
