package domain

// TransferSnapshot represents "transfers for this treasury in
// [FromTimestamp, ToTimestamp) are not known to be complete." Its
// presence means there is fetch work to do (spec.md §3).
type TransferSnapshot struct {
	TreasuryID     string `json:"treasury_id"`
	FromTimestamp  int64  `json:"from_timestamp"`
	ToTimestamp    int64  `json:"to_timestamp"`
}

// PriceSnapshot represents a missing price at (TokenID, Timestamp).
type PriceSnapshot struct {
	TokenID   string `json:"token_id"`
	Timestamp int64  `json:"timestamp"`
}
