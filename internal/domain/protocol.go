package domain

import "time"

// Rating is a 3-letter (or shorter) credit rating code.
type Rating string

const (
	RatingAAA   Rating = "AAA"
	RatingAA    Rating = "AA"
	RatingA     Rating = "A"
	RatingBBB   Rating = "BBB"
	RatingBB    Rating = "BB"
	RatingB     Rating = "B"
	RatingLower Rating = "lower"
)

// HackEvent records a historical loss event used by the operational RWA's
// Internal Loss Multiplier.
type HackEvent struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// Protocol is a tracked on-chain protocol.
type Protocol struct {
	ID        string      `json:"id"`
	Rating    Rating      `json:"rating"`
	Addresses []string    `json:"addresses"` // treasury ∪ addresses, lowercased
	Hacks     []HackEvent `json:"hacks"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Treasury is an on-chain address holding a protocol's own funds.
type Treasury struct {
	ID         string    `json:"id"` // lowercase address, PK
	ProtocolID string    `json:"protocol_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RiskWeight returns the counterparty-credit risk weight for a rating,
// per spec.md §4.7.3. Unrated/unknown ratings fall back to the highest
// weight, matching the "missing rating" error-handling rule in §7.
func (r Rating) RiskWeight() float64 {
	switch r {
	case RatingAAA, RatingAA:
		return 0.2
	case RatingA:
		return 0.5
	case RatingBBB:
		return 0.75
	case RatingBB:
		return 1.0
	default:
		return 1.5
	}
}

// MarketDRCWeight returns the default-risk weight used by the market RWA's
// DRC component, per spec.md §4.7.4. Unrated/unknown ratings use the most
// conservative weight.
func (r Rating) MarketDRCWeight() float64 {
	switch r {
	case RatingAAA:
		return 0.005
	case RatingAA:
		return 0.02
	case RatingA:
		return 0.03
	case RatingBBB:
		return 0.06
	case RatingBB:
		return 0.15
	case RatingB:
		return 0.30
	default:
		return 0.50
	}
}
