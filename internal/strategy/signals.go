package strategy

import "VNIndexAgent/internal/model"

// RSI zone boundaries.
const (
	Overbought = 70.0
	Oversold   = 30.0
)

// Zone is the RSI classification of a symbol.
type Zone string

const (
	ZoneOverbought Zone = "OVERBOUGHT"
	ZoneOversold   Zone = "OVERSOLD"
	ZoneNeutral    Zone = "NEUTRAL"
)

// ClassifyRSI maps an RSI value to its zone. Boundaries are exclusive.
func ClassifyRSI(rsi float64) Zone {
	switch {
	case rsi > Overbought:
		return ZoneOverbought
	case rsi < Oversold:
		return ZoneOversold
	default:
		return ZoneNeutral
	}
}

// Commentary returns the Vietnamese reading of the zone.
func (z Zone) Commentary() string {
	switch z {
	case ZoneOverbought:
		return "Quá mua - Cảnh báo đảo chiều"
	case ZoneOversold:
		return "Quá bán - Tiềm năng phục hồi"
	default:
		return "Trung tính"
	}
}

// MACDBullish reports whether the MACD line sits above its signal line.
func MACDBullish(macd, signal float64) bool {
	return macd > signal
}

// MACDCommentary returns the Vietnamese reading of the MACD/signal relation.
func MACDCommentary(macd, signal float64) string {
	if MACDBullish(macd, signal) {
		return "MACD cắt lên Signal -> Tín hiệu Tăng"
	}
	return "MACD cắt xuống Signal -> Tín hiệu Giảm"
}

// ClassifyTrend uses moving-average alignment.
// Bull alignment: price > SMA20 > SMA50
// Bear alignment: price < SMA20 < SMA50
func ClassifyTrend(price, sma20, sma50 float64) model.Trend {
	switch {
	case price > sma20 && sma20 > sma50:
		return model.TrendUp
	case price < sma20 && sma20 < sma50:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}
