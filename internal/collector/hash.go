// Package collector drains the transfer and price backlogs: claim or
// page a snapshot, fetch from the external clients, persist
// idempotently, and clear the snapshot on success (spec.md §4.5,
// §4.6).
package collector

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/aristath/car-engine/internal/domain"
)

// TransferID derives a transfer's content-hash primary key from its
// full identity — (blockHash, hash, transactionIndex) plus the fields
// that end up persisted — so the same on-chain event can never be
// inserted twice (spec.md §4.5 step 4), grounded on the teacher's
// GeneratePortfolioHash canonical-string-then-md5 pattern.
func TransferID(tx domain.RawTx) string {
	canonical := strings.Join([]string{
		"blockHash:" + tx.BlockHash,
		"hash:" + tx.Hash,
		"transactionIndex:" + tx.TransactionIndex,
		"timeStamp:" + tx.TimeStamp,
		"blockNumber:" + tx.BlockNumber,
		"contractAddress:" + strings.ToLower(tx.ContractAddress),
		"from:" + strings.ToLower(tx.From),
		"to:" + strings.ToLower(tx.To),
		"value:" + tx.Value,
	}, ",")
	sum := md5.Sum([]byte(canonical))
	return fmt.Sprintf("%x", sum)
}
