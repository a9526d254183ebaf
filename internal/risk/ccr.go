package risk

import (
	"math"

	"github.com/aristath/car-engine/internal/domain"
)

// CCRRWA computes the counterparty-credit-risk RWA series: non-cash
// exposure is partitioned by counterparty protocol, netted into a
// potential-future-exposure add-on per Basel SA-CCR, then weighted by
// counterparty rating (spec.md §4.7.3).
func CCRRWA(frame *Frame, ratings map[string]domain.Rating) []float64 {
	byCounterparty := make(map[string][]string)
	for id, tok := range frame.Tokens {
		if tok.Category() == domain.CategoryCash {
			continue
		}
		byCounterparty[tok.ProtocolID] = append(byCounterparty[tok.ProtocolID], id)
	}

	out := make([]float64, len(frame.Days))
	for counterparty, tokenIDs := range byCounterparty {
		v := frame.SumUSD(tokenIDs)
		addon := counterpartyAddon(frame, tokenIDs)

		weight := ratings[counterparty].RiskWeight()
		for i := range out {
			multiplier := clipMultiplier(v[i], addon[i])
			pfe := multiplier * addon[i]
			ead := 1.4 * (v[i] + pfe)
			out[i] += weight * ead
		}
	}
	return out
}

// counterpartyAddon computes the PFE add-on series for one
// counterparty's token set, grouped into entities by `underlying`
// (spec.md §4.7.3).
func counterpartyAddon(frame *Frame, tokenIDs []string) []float64 {
	type entity struct {
		ids        []string
		isSingle   bool
		underlying string
	}
	entities := make(map[string]*entity)
	for _, id := range tokenIDs {
		key := "single:" + id
		single := true
		underlying := ""
		if u := frame.Tokens[id].Underlying; u != nil {
			key = "entity:" + *u
			single = false
			underlying = *u
		}
		if entities[key] == nil {
			entities[key] = &entity{isSingle: single, underlying: underlying}
		}
		entities[key].ids = append(entities[key].ids, id)
	}

	n := len(frame.Days)
	addonSum := make([]float64, n)
	addonSq := make([]float64, n)

	for _, e := range entities {
		group := e.ids
		sf, rho := 0.32, 0.5
		if entityCategory(frame, e.underlying) == domain.CategoryIndex {
			sf, rho = 0.2, 0.8
		}

		if e.isSingle || len(group) == 1 {
			for _, id := range group {
				col := frame.USD[id]
				for i := 0; i < n; i++ {
					ax := sf * col[i]
					addonSum[i] += rho * ax
					addonSq[i] += (1 - rho*rho) * ax * ax
				}
			}
		} else {
			grouped := frame.SumUSD(group)
			for i := 0; i < n; i++ {
				a := sf * grouped[i]
				addonSum[i] += rho * a
				addonSq[i] += (1 - rho*rho) * a * a
			}
		}
	}

	addon := make([]float64, n)
	for i := 0; i < n; i++ {
		addon[i] = math.Sqrt(addonSum[i]*addonSum[i] + addonSq[i])
	}
	return addon
}

// entityCategory reports the category of the underlying token that
// defines an entity group, used to pick the supervisory factor/
// correlation pair (spec.md §4.7.3). A single-name entity (no
// underlying) never qualifies as an index.
func entityCategory(frame *Frame, underlyingID string) domain.Category {
	if underlyingID == "" {
		return domain.CategoryUnknown
	}
	underlying, ok := frame.Tokens[underlyingID]
	if !ok {
		return domain.CategoryUnknown
	}
	return underlying.Category()
}

// clipMultiplier computes the SA-CCR PFE multiplier, clipped at 1.0
// and zeroed on NaN (spec.md §4.7.3).
func clipMultiplier(v, addon float64) float64 {
	if addon == 0 {
		return 0
	}
	m := 0.05 + 0.95*math.Exp(v/(2*0.95*addon))
	if math.IsNaN(m) {
		return 0
	}
	return math.Min(m, 1.0)
}
