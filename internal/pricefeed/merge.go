package pricefeed

import (
	"math"
	"sort"

	"VNIndexAgent/internal/model"
)

// Rejection records a parsed quote discarded by the jump guard.
type Rejection struct {
	Symbol   string
	Current  float64
	Incoming float64
}

// Merge overlays incoming on current. Entries are only added or replaced, never
// removed. When maxJump > 0, an incoming quote deviating from a known positive
// price by more than that fraction is rejected and the known price kept.
func Merge(current, incoming model.PriceTable, maxJump float64) (model.PriceTable, model.PriceTable, []Rejection) {
	merged := current.Clone()
	accepted := make(model.PriceTable, len(incoming))
	var rejected []Rejection

	for _, sym := range sortedKeys(incoming) {
		price := incoming[sym]
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		if old, ok := current.Lookup(sym); ok && maxJump > 0 {
			if math.Abs(price-old)/old > maxJump {
				rejected = append(rejected, Rejection{Symbol: sym, Current: old, Incoming: price})
				continue
			}
		}
		merged[sym] = price
		accepted[sym] = price
	}
	return merged, accepted, rejected
}

func sortedKeys(p model.PriceTable) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
