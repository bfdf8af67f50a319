package collector

import (
	"context"

	"VNIndexAgent/internal/model"
)

// Fetcher defines the interface for fetching historical candles.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}
