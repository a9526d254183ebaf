package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/car-engine/internal/domain"
)

func sampleTx() domain.RawTx {
	return domain.RawTx{
		BlockHash:        "0xblock",
		Hash:             "0xhash",
		TransactionIndex: "3",
		TimeStamp:        "1534377600",
		BlockNumber:      "6200000",
		ContractAddress:  "0xTokenABC",
		From:             "0xFromAddr",
		To:               "0xToAddr",
		Value:            "1000000000000000000",
	}
}

func TestTransferIDDeterministic(t *testing.T) {
	a := TransferID(sampleTx())
	b := TransferID(sampleTx())
	assert.Equal(t, a, b)
	assert.Len(t, a, 32) // full md5 hex digest, not an 8-char prefix
}

func TestTransferIDCaseInsensitiveAddresses(t *testing.T) {
	lower := sampleTx()
	upper := sampleTx()
	upper.ContractAddress = "0xTOKENABC"
	upper.From = "0xFROMADDR"
	upper.To = "0xTOADDR"

	assert.Equal(t, TransferID(lower), TransferID(upper))
}

func TestTransferIDDiffersOnValue(t *testing.T) {
	a := sampleTx()
	b := sampleTx()
	b.Value = "2000000000000000000"
	assert.NotEqual(t, TransferID(a), TransferID(b))
}
