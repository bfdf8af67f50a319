package notifier

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"VNIndexAgent/internal/alert"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/portfolio"
)

const (
	maxMessageRunes = 4000
	maxTextRunes    = 3200 // leaves room for the source list
	maxSources      = 5
	maxTitleRunes   = 80
)

var boldMarkup = regexp.MustCompile(`\*\*(.+?)\*\*`)

// ToHTML converts the lightweight markup of model replies into Telegram HTML.
func ToHTML(text string) string {
	return boldMarkup.ReplaceAllString(html.EscapeString(text), "<b>$1</b>")
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// FormatMessage renders a transcript entry with its citations. The text is cut
// before markup conversion so a long reply never ends inside a tag or entity.
func FormatMessage(m model.Message) string {
	var b strings.Builder
	b.WriteString(ToHTML(Truncate(m.Text, maxTextRunes)))
	sources := m.Sources
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	if len(sources) > 0 {
		b.WriteString("\n\n🔗 <b>Nguồn:</b>")
		for _, s := range sources {
			fmt.Fprintf(&b, "\n• <a href=\"%s\">%s</a>", html.EscapeString(s.URI), html.EscapeString(Truncate(s.Title, maxTitleRunes)))
		}
	}
	return b.String()
}

// FormatPrices lists quotes with the index symbol first.
func FormatPrices(prices model.PriceTable, index string, updated time.Time) string {
	syms := make([]string, 0, len(prices))
	for s := range prices {
		if s != index {
			syms = append(syms, s)
		}
	}
	sort.Strings(syms)
	if _, ok := prices[index]; ok {
		syms = append([]string{index}, syms...)
	}

	var b strings.Builder
	b.WriteString("💹 <b>Bảng giá</b>\n")
	for _, s := range syms {
		fmt.Fprintf(&b, "\n%s: %s", s, alert.FormatPrice(prices[s]))
	}
	if !updated.IsZero() {
		fmt.Fprintf(&b, "\n\nCập nhật: %s", updated.Format("15:04 02/01/2006"))
	}
	return b.String()
}

// FormatPortfolio renders holdings, sector weights and totals.
func FormatPortfolio(s portfolio.Summary) string {
	var b strings.Builder
	b.WriteString("💼 <b>Danh mục</b>\n")
	for _, p := range s.Positions {
		fmt.Fprintf(&b, "\n%s: %d cp × %s (%+.2f%%)", p.Symbol, p.Shares, alert.FormatPrice(p.CurrentPrice), p.PnLPct)
	}
	b.WriteString("\n\n<b>Phân bổ ngành:</b>\n")
	b.WriteString(html.EscapeString(portfolio.SectorBreakdown(s)))
	fmt.Fprintf(&b, "\n\nTổng giá trị: %s VND", alert.FormatPrice(s.TotalValue))
	fmt.Fprintf(&b, "\nLãi/lỗ: %s VND (%+.2f%%)", alert.FormatPrice(s.TotalPnL), s.TotalPnLPct)
	return b.String()
}

// FormatAlerts lists alerts with their state.
func FormatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "🔔 Chưa có cảnh báo nào."
	}
	var b strings.Builder
	b.WriteString("🔔 <b>Cảnh báo giá</b>\n")
	for _, a := range alerts {
		status := "đang theo dõi"
		if !a.Active {
			status = "đã kích hoạt"
		}
		op := ">"
		if a.Condition == model.Below {
			op = "<"
		}
		fmt.Fprintf(&b, "\n%s %s %s (%s)", a.Symbol, op, alert.FormatPrice(a.Threshold), status)
	}
	return b.String()
}
