package indicator

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"

	"VNIndexAgent/internal/calculator"
	"VNIndexAgent/internal/collector"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/strategy"
)

// Synthetic RSI policy range, so both overbought and oversold-adjacent readings occur.
const (
	MinRSI = 30
	MaxRSI = 80
)

// Generator produces the indicator block for a research request.
type Generator interface {
	Generate(ctx context.Context, symbol string, price float64) model.TechnicalIndicators
}

// Synthetic stands in for a feature pipeline: indicators are random within policy bounds.
type Synthetic struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSynthetic creates a generator over rnd. A nil rnd uses a randomly seeded source.
func NewSynthetic(rnd *rand.Rand) *Synthetic {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Synthetic{rnd: rnd}
}

func (s *Synthetic) Generate(_ context.Context, symbol string, price float64) model.TechnicalIndicators {
	s.mu.Lock()
	defer s.mu.Unlock()

	ind := model.TechnicalIndicators{
		Symbol: symbol,
		Price:  price,
		RSI:    math.Floor(s.rnd.Float64()*(MaxRSI-MinRSI) + MinRSI),
		MACD:   s.rnd.Float64()*2 - 1,
		Signal: s.rnd.Float64()*2 - 1,
		SMA20:  price * (1 + (s.rnd.Float64()*0.05 - 0.025)),
		SMA50:  price * (1 + (s.rnd.Float64()*0.1 - 0.05)),
	}
	ind.Trend = strategy.ClassifyTrend(price, ind.SMA20, ind.SMA50)
	return ind
}

// Candles computes indicators from daily history, falling back to another generator.
type Candles struct {
	Fetcher  collector.Fetcher
	Fallback Generator
	Days     int
	log      zerolog.Logger
}

// NewCandles creates a candle-backed generator.
func NewCandles(fetcher collector.Fetcher, fallback Generator, log zerolog.Logger) *Candles {
	return &Candles{
		Fetcher:  fetcher,
		Fallback: fallback,
		Days:     120,
		log:      log.With().Str("component", "indicator").Logger(),
	}
}

func (c *Candles) Generate(ctx context.Context, symbol string, price float64) model.TechnicalIndicators {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Days)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Str("source", c.Fetcher.Name()).
			Msg("candle fetch failed, using fallback generator")
		return c.Fallback.Generate(ctx, symbol, price)
	}
	closes := calculator.Closes(bars)
	if price <= 0 && len(closes) > 0 {
		price = closes[len(closes)-1]
	}

	ind := model.TechnicalIndicators{Symbol: symbol, Price: price}

	if rsi, err := calculator.CalculateRSI(closes, 14); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("RSI calculation failed, defaulting to 50")
		ind.RSI = 50
	} else {
		ind.RSI = rsi
	}

	if macd, sig, err := calculator.CalculateMACD(closes, 12, 26, 9); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("MACD calculation failed")
	} else {
		ind.MACD, ind.Signal = macd, sig
	}

	if sma, err := calculator.CalculateSMA(closes, 20); err != nil {
		ind.SMA20 = price
	} else {
		ind.SMA20 = sma
	}
	if sma, err := calculator.CalculateSMA(closes, 50); err != nil {
		ind.SMA50 = price
	} else {
		ind.SMA50 = sma
	}

	ind.Trend = strategy.ClassifyTrend(price, ind.SMA20, ind.SMA50)
	return ind
}
