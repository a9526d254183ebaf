package collector

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/clients/etherscan"
	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/store"
)

// TransferCollector drains the transfer backlog: claim a snapshot,
// page through transfers for its treasury in its window, write
// transfers idempotently, delete the snapshot on success (spec.md
// §4.5).
type TransferCollector struct {
	store      *store.Store
	etherscan  *etherscan.Client
	tokenIndex func(address string) bool
	log        zerolog.Logger
}

// NewTransferCollector builds a TransferCollector. tokenIndex reports
// whether an address is a known Token id, used to filter raw txs
// (spec.md §4.5 step 3).
func NewTransferCollector(s *store.Store, client *etherscan.Client, tokenIndex func(string) bool, log zerolog.Logger) *TransferCollector {
	return &TransferCollector{
		store:      s,
		etherscan:  client,
		tokenIndex: tokenIndex,
		log:        log.With().Str("component", "transfer_collector").Logger(),
	}
}

// RunOnce claims one pending TransferSnapshot and drains it. Returns
// (false, nil) when the backlog is empty.
func (c *TransferCollector) RunOnce(ctx context.Context) (bool, error) {
	snap, ok, err := c.store.ClaimNextTransferSnapshot(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := c.drain(ctx, snap); err != nil {
		c.log.Warn().Err(err).
			Str("treasury", snap.TreasuryID).
			Int64("from", snap.FromTimestamp).
			Int64("to", snap.ToTimestamp).
			Msg("transfer collection failed, re-enqueueing snapshot")
		if reErr := c.store.ReinsertTransferSnapshot(ctx, snap); reErr != nil {
			return true, reErr
		}
		return true, nil
	}
	return true, nil
}

func (c *TransferCollector) drain(ctx context.Context, snap domain.TransferSnapshot) error {
	fromBlock, err := c.etherscan.BlockAt(ctx, snap.FromTimestamp)
	if err != nil {
		return err
	}
	toBlock, err := c.etherscan.BlockAt(ctx, snap.ToTimestamp)
	if err != nil {
		return err
	}

	var transfers []domain.Transfer
	cursor := fromBlock
	for {
		txs, err := c.etherscan.TokenTransfers(ctx, snap.TreasuryID, cursor, toBlock)
		if err != nil {
			return err
		}

		for _, tx := range txs {
			if !c.tokenIndex(strings.ToLower(tx.ContractAddress)) {
				continue
			}
			transfers = append(transfers, toTransfer(tx))
		}

		if len(txs) < etherscan.PageSize() {
			break
		}
		last, err := strconv.ParseInt(txs[len(txs)-1].BlockNumber, 10, 64)
		if err != nil {
			break
		}
		cursor = last
	}

	return c.store.InsertTransfers(ctx, transfers)
}

func toTransfer(tx domain.RawTx) domain.Transfer {
	ts, _ := strconv.ParseInt(tx.TimeStamp, 10, 64)
	block, _ := strconv.ParseInt(tx.BlockNumber, 10, 64)
	return domain.Transfer{
		ID:          TransferID(tx),
		Timestamp:   ts,
		BlockNumber: block,
		TokenID:     strings.ToLower(tx.ContractAddress),
		From:        strings.ToLower(tx.From),
		To:          strings.ToLower(tx.To),
		Value:       tx.Value,
	}
}
