package domain

// Asset is a single day's computed risk figures for a protocol — the
// Risk Engine's only persisted output (spec.md §3, §4.7.6).
type Asset struct {
	ProtocolID      string `json:"protocol_id"`
	Timestamp       int64  `json:"timestamp"`
	CET1            string `json:"cet1"`
	CreditRWA       string `json:"credit_rwa"`
	MarketRWA       string `json:"market_rwa"`
	OperationalRWA  string `json:"operational_rwa"`
	RWA             string `json:"rwa"`
	CAR             float64 `json:"car"`
}
