package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerUnionDedupesAndLowercases(t *testing.T) {
	out := lowerUnion([]string{"0xAAA", "0xBBB"}, []string{"0xbbb", "0xCCC"})
	assert.ElementsMatch(t, []string{"0xaaa", "0xbbb", "0xccc"}, out)
	assert.Len(t, out, 3)
}

func TestLowerUnionEmptyInputs(t *testing.T) {
	assert.Empty(t, lowerUnion(nil, nil))
}

func TestLowerUnionPreservesFirstOccurrenceOrder(t *testing.T) {
	out := lowerUnion([]string{"0xAAA"}, []string{"0xbbb", "0xaaa"})
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, out)
}
