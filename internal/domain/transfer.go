package domain

// Transfer is a single ERC-20 transfer event, content-addressed so the
// same on-chain event cannot be inserted twice (spec.md §3).
type Transfer struct {
	ID          string `json:"id"` // md5 content hash, PK
	Timestamp   int64  `json:"timestamp"`
	BlockNumber int64  `json:"block_number"`
	TokenID     string `json:"token_id"`
	From        string `json:"from_address"`
	To          string `json:"to_address"`
	Value       string `json:"value"` // raw integer, decimal-safe string
}

// RawTx is the wire shape returned by the block-explorer client, before
// identity fields are stripped for persistence. Field names mirror the
// block-explorer's JSON response (spec.md §4.2).
type RawTx struct {
	BlockHash        string `json:"blockHash"`
	Hash             string `json:"hash"`
	TransactionIndex string `json:"transactionIndex"`
	TimeStamp        string `json:"timeStamp"`
	BlockNumber      string `json:"blockNumber"`
	ContractAddress  string `json:"contractAddress"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
}
