package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceTable maps a ticker (including the composite index symbol) to its current price.
type PriceTable map[string]float64

// Clone returns an independent copy of the table.
func (p PriceTable) Clone() PriceTable {
	out := make(PriceTable, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Lookup returns the price for symbol when it is known and positive.
func (p PriceTable) Lookup(symbol string) (float64, bool) {
	v, ok := p[symbol]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
