package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateRSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 prices.
func CalculateRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period+1 {
		return 0, ErrNotEnoughData
	}
	rsi := talib.Rsi(prices, period)
	last := rsi[len(rsi)-1]
	if math.IsNaN(last) {
		return 0, ErrNotEnoughData
	}
	return last, nil
}
