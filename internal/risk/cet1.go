package risk

import "github.com/aristath/car-engine/internal/domain"

// CET1 computes the Common Equity Tier 1 series: cash balances plus
// the protocol's own-issued equity tokens, USD-valued (spec.md
// §4.7.2).
func CET1(frame *Frame, protocolID string) []float64 {
	cashIDs := frame.TokensByCategory(domain.CategoryCash)
	cashBalance := frame.SumRaw(cashIDs)

	var shareIDs []string
	for id, tok := range frame.Tokens {
		if tok.Category() == domain.CategoryEquity && tok.ProtocolID == protocolID {
			shareIDs = append(shareIDs, id)
		}
	}
	shareBalance := frame.SumUSD(shareIDs)

	out := make([]float64, len(frame.Days))
	for i := range out {
		out[i] = cashBalance[i] + shareBalance[i]
	}
	return out
}
