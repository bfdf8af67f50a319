package pricefeed

import (
	"math/rand/v2"
	"sync"

	"VNIndexAgent/internal/model"
)

// Simulator applies a small multiplicative random walk to keep quotes moving
// between authoritative refreshes.
type Simulator struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	amplitude float64 // full width of the per-tick change, e.g. 0.001 is ±0.05%
}

// NewSimulator creates a simulator. A nil rnd uses a randomly seeded source.
func NewSimulator(amplitude float64, rnd *rand.Rand) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{rnd: rnd, amplitude: amplitude}
}

// Step returns a perturbed copy of prices.
func (s *Simulator) Step(prices model.PriceTable) model.PriceTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(model.PriceTable, len(prices))
	for _, sym := range sortedKeys(prices) {
		out[sym] = prices[sym] * (1 + (s.rnd.Float64()-0.5)*s.amplitude)
	}
	return out
}
