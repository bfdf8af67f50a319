package model

// DefaultSector is used when a holding carries no sector label.
const DefaultSector = "Khác"

// PortfolioItem is a held position.
type PortfolioItem struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Shares       int64   `json:"shares" yaml:"shares"`
	AvgPrice     float64 `json:"avg_price" yaml:"avg_price"`
	CurrentPrice float64 `json:"current_price" yaml:"current_price"`
	Sector       string  `json:"sector,omitempty" yaml:"sector"`
}

// SectorOrDefault returns the sector label, falling back to DefaultSector.
func (p PortfolioItem) SectorOrDefault() string {
	if p.Sector == "" {
		return DefaultSector
	}
	return p.Sector
}
