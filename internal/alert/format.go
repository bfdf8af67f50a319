package alert

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Vietnamese)

// FormatPrice renders a price with Vietnamese digit grouping. Share prices are
// whole dong; index levels keep two decimals.
func FormatPrice(v float64) string {
	if v >= 1000 {
		return printer.Sprintf("%.0f", v)
	}
	return printer.Sprintf("%.2f", v)
}
