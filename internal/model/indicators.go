package model

// Trend classifies the short/medium term direction of a symbol.
type Trend string

const (
	TrendUp       Trend = "UP"
	TrendDown     Trend = "DOWN"
	TrendSideways Trend = "SIDEWAYS"
)

// TechnicalIndicators holds the per-request indicator block used by research mode.
type TechnicalIndicators struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	RSI    float64 `json:"rsi"`
	MACD   float64 `json:"macd"`
	Signal float64 `json:"signal"`
	SMA20  float64 `json:"sma20"`
	SMA50  float64 `json:"sma50"`
	Trend  Trend   `json:"trend"`
}
