package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"

	"VNIndexAgent/internal/model"
)

var ErrNotEnoughData = errors.New("not enough data")

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrNotEnoughData
	}
	sma := talib.Sma(prices, period)
	return sma[len(sma)-1], nil
}

// CalculateMACD returns the latest MACD line and signal line values.
func CalculateMACD(prices []float64, fast, slow, signal int) (macd, sig float64, err error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return 0, 0, errors.New("invalid MACD periods")
	}
	if len(prices) < slow+signal {
		return 0, 0, ErrNotEnoughData
	}
	line, signalLine, _ := talib.Macd(prices, fast, slow, signal)
	return line[len(line)-1], signalLine[len(signalLine)-1], nil
}

// Closes extracts closing prices from bars.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
