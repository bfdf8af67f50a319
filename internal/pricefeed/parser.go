package pricefeed

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"VNIndexAgent/internal/model"
)

// priceLine matches "SYMBOL: PRICE" anywhere in a line. The symbol must not be glued
// to a preceding word character and the number must end the numeric run without
// running into a letter, so a trailing sentence period is fine but "1.2.3" and
// "1e5" are not. Markdown bold around either
// side and full-width colons are accepted.
var priceLine = regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9-])([A-Z0-9-]{3,10})\**\s*[:：]\s*\**\s*([0-9][0-9,]*(?:\.[0-9]+)?)(?:[^0-9.,A-Z]|[.,](?:[^0-9A-Z]|$)|$)`)

// ParsePrices extracts symbol → price pairs from free text, one pair per line.
// Unmatched lines and non-finite or non-positive values are skipped; a repeated
// symbol keeps its last value. It never fails, and an empty table means no update.
func ParsePrices(raw string) model.PriceTable {
	prices := make(model.PriceTable)
	for _, line := range strings.Split(raw, "\n") {
		sym, price, ok := parseLine(line)
		if !ok {
			continue
		}
		prices[sym] = price
	}
	return prices
}

func parseLine(line string) (string, float64, bool) {
	m := priceLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", 0, false
	}
	sym := strings.ToUpper(strings.TrimSpace(m[1]))
	price, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return "", 0, false
	}
	return sym, price, true
}
