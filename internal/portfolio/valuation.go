package portfolio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"VNIndexAgent/internal/alert"
	"VNIndexAgent/internal/model"
)

// Position is the valuation of one holding.
type Position struct {
	model.PortfolioItem
	Value     float64 `json:"value"`
	Cost      float64 `json:"cost"`
	PnL       float64 `json:"pnl"`
	PnLPct    float64 `json:"pnl_pct"`
	WeightPct float64 `json:"weight_pct"`
}

// SectorWeight is the share of total value held in a sector.
type SectorWeight struct {
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
	Pct    float64 `json:"pct"`
}

// Summary is the valuation of a whole portfolio.
type Summary struct {
	Positions     []Position     `json:"positions"`
	Sectors       []SectorWeight `json:"sectors"`
	TotalValue    float64        `json:"total_value"`
	TotalCost     float64        `json:"total_cost"`
	TotalPnL      float64        `json:"total_pnl"`
	TotalPnLPct   float64        `json:"total_pnl_pct"`
	Concentration float64        `json:"concentration"` // Herfindahl index of sector weights, 0..1
}

// Value computes position, sector and total figures. Sums are exact decimals;
// percentages are 0 whenever their denominator is 0.
func Value(items []model.PortfolioItem) Summary {
	totalValue := decimal.Zero
	totalCost := decimal.Zero
	sectorValue := make(map[string]decimal.Decimal)
	var sectorOrder []string

	positions := make([]Position, 0, len(items))
	for _, item := range items {
		shares := decimal.NewFromInt(item.Shares)
		value := shares.Mul(decimal.NewFromFloat(item.CurrentPrice))
		cost := shares.Mul(decimal.NewFromFloat(item.AvgPrice))
		pnl := value.Sub(cost)

		totalValue = totalValue.Add(value)
		totalCost = totalCost.Add(cost)

		sector := item.SectorOrDefault()
		if _, ok := sectorValue[sector]; !ok {
			sectorOrder = append(sectorOrder, sector)
		}
		sectorValue[sector] = sectorValue[sector].Add(value)

		positions = append(positions, Position{
			PortfolioItem: item,
			Value:         value.InexactFloat64(),
			Cost:          cost.InexactFloat64(),
			PnL:           pnl.InexactFloat64(),
			PnLPct:        percent(pnl, cost),
		})
	}

	for i := range positions {
		positions[i].WeightPct = percent(decimal.NewFromFloat(positions[i].Value), totalValue)
	}

	sectors := make([]SectorWeight, 0, len(sectorOrder))
	for _, s := range sectorOrder {
		sectors = append(sectors, SectorWeight{
			Sector: s,
			Value:  sectorValue[s].InexactFloat64(),
			Pct:    percent(sectorValue[s], totalValue),
		})
	}
	sort.SliceStable(sectors, func(i, j int) bool { return sectors[i].Value > sectors[j].Value })

	totalPnL := totalValue.Sub(totalCost)
	return Summary{
		Positions:     positions,
		Sectors:       sectors,
		TotalValue:    totalValue.InexactFloat64(),
		TotalCost:     totalCost.InexactFloat64(),
		TotalPnL:      totalPnL.InexactFloat64(),
		TotalPnLPct:   percent(totalPnL, totalCost),
		Concentration: herfindahl(sectors),
	}
}

func percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// herfindahl returns the sum of squared sector weights: 1 for a single sector,
// approaching 0 as holdings spread out.
func herfindahl(sectors []SectorWeight) float64 {
	if len(sectors) == 0 {
		return 0
	}
	w := make([]float64, len(sectors))
	for i, s := range sectors {
		w[i] = s.Value
	}
	total := floats.Sum(w)
	if total == 0 {
		return 0
	}
	floats.Scale(1/total, w)
	return floats.Dot(w, w)
}

// ApplyPrices updates current prices of holdings present in prices and returns
// the updated copy. Holdings without a quote keep their current price.
func ApplyPrices(items []model.PortfolioItem, prices model.PriceTable) []model.PortfolioItem {
	out := make([]model.PortfolioItem, len(items))
	copy(out, items)
	for i := range out {
		if p, ok := prices.Lookup(out[i].Symbol); ok {
			out[i].CurrentPrice = p
		}
	}
	return out
}

// Symbols lists holding tickers in portfolio order.
func Symbols(items []model.PortfolioItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Symbol
	}
	return out
}

// SectorBreakdown renders the sector list as "- Sector: 12.3%" lines, rounding
// half away from zero.
func SectorBreakdown(s Summary) string {
	lines := make([]string, len(s.Sectors))
	for i, sec := range s.Sectors {
		lines[i] = fmt.Sprintf("- %s: %s%%", sec.Sector, decimal.NewFromFloat(sec.Pct).StringFixed(1))
	}
	return strings.Join(lines, "\n")
}

// HoldingsSummary renders holdings as "SYM (Sector, N cp, Giá: P)" joined by commas.
func HoldingsSummary(items []model.PortfolioItem) string {
	parts := make([]string, len(items))
	for i, p := range items {
		parts[i] = fmt.Sprintf("%s (%s, %d cp, Giá: %s)", p.Symbol, p.SectorOrDefault(), p.Shares, alert.FormatPrice(p.CurrentPrice))
	}
	return strings.Join(parts, ", ")
}
