package strategy

import (
	"testing"

	"VNIndexAgent/internal/model"
)

func TestClassifyRSI_AllBoundaries(t *testing.T) {
	tests := []struct {
		rsi  float64
		zone Zone
	}{
		{0, ZoneOversold},
		{29.9, ZoneOversold},
		{30, ZoneNeutral},
		{50, ZoneNeutral},
		{70, ZoneNeutral},
		{70.1, ZoneOverbought},
		{100, ZoneOverbought},
	}
	for _, tt := range tests {
		if got := ClassifyRSI(tt.rsi); got != tt.zone {
			t.Errorf("rsi %.1f: expected %s, got %s", tt.rsi, tt.zone, got)
		}
	}
}

func TestZoneCommentary(t *testing.T) {
	if ZoneOverbought.Commentary() == ZoneOversold.Commentary() {
		t.Error("overbought and oversold must read differently")
	}
	if ZoneNeutral.Commentary() != "Trung tính" {
		t.Errorf("unexpected neutral commentary %q", ZoneNeutral.Commentary())
	}
}

func TestMACD(t *testing.T) {
	if !MACDBullish(0.5, 0.1) {
		t.Error("expected bullish when macd > signal")
	}
	if MACDBullish(0.1, 0.1) {
		t.Error("equal lines are not bullish")
	}
	if MACDCommentary(-0.2, 0.3) != "MACD cắt xuống Signal -> Tín hiệu Giảm" {
		t.Error("unexpected bearish commentary")
	}
}

func TestClassifyTrend_BullBear(t *testing.T) {
	tests := []struct {
		name                string
		price, sma20, sma50 float64
		want                model.Trend
	}{
		{"bullish alignment", 6000, 5900, 5700, model.TrendUp},
		{"bearish alignment", 5000, 5200, 5400, model.TrendDown},
		{"price above, MAs crossed", 6000, 5700, 5900, model.TrendSideways},
		{"flat", 5000, 5000, 5000, model.TrendSideways},
	}
	for _, tt := range tests {
		if got := ClassifyTrend(tt.price, tt.sma20, tt.sma50); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
