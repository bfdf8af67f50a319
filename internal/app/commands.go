package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/notifier"
	"VNIndexAgent/internal/portfolio"
)

const helpText = `<b>VN-Index Agent</b>

/prices - bảng giá hiện tại
/portfolio - danh mục và phân bổ ngành
/analyze - nhờ trợ lý phân tích danh mục
/review - đánh giá danh mục
/refresh - cập nhật giá từ web
/alerts - danh sách cảnh báo
/alert MÃ ABOVE|BELOW GIÁ - thêm cảnh báo
/quick MÃ - cảnh báo ±5% quanh giá hiện tại
/research MÃ câu hỏi - phân tích chuyên sâu
Tin nhắn khác được gửi tới trợ lý.`

// HandleCommand runs a chat command and returns the HTML reply. Review output
// is delivered by the forwarder, so that command replies with nothing.
func (a *App) HandleCommand(ctx context.Context, text string) string {
	cmd, args := notifier.ParseCommand(text)
	switch cmd {
	case "/start", "/help":
		return helpText
	case "/prices":
		s := a.store.Snapshot()
		return notifier.FormatPrices(s.Prices, a.market.IndexSymbol, s.LastUpdated)
	case "/portfolio":
		return notifier.FormatPortfolio(portfolio.Value(a.store.Snapshot().Portfolio))
	case "/alerts":
		return notifier.FormatAlerts(a.store.Snapshot().Alerts)
	case "/alert":
		return a.alertCommand(args)
	case "/quick":
		pair, err := a.QuickAlerts(args)
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatAlerts(pair[:])
	case "/refresh":
		res := a.RefreshPrices(ctx)
		if res.Skipped {
			return "⏳ Đang cập nhật giá, vui lòng chờ."
		}
		s := a.store.Snapshot()
		return notifier.FormatPrices(s.Prices, a.market.IndexSymbol, s.LastUpdated)
	case "/review":
		a.ReviewPortfolio(ctx)
		return ""
	case "/analyze":
		return a.reply(a.AnalyzePortfolio(ctx))
	case "/research":
		return a.reply(a.Chat(ctx, args, true))
	case "":
		return a.reply(a.Chat(ctx, args, false))
	}
	return "❓ Lệnh không hợp lệ. Gõ /help để xem danh sách lệnh."
}

func (a *App) reply(m model.Message, err error) string {
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatMessage(m)
}

func (a *App) alertCommand(args string) string {
	f := strings.Fields(args)
	if len(f) != 3 {
		return "Cú pháp: /alert MÃ ABOVE|BELOW GIÁ"
	}
	threshold, err := strconv.ParseFloat(strings.ReplaceAll(f[2], ",", ""), 64)
	if err != nil {
		return fmt.Sprintf("❌ Giá không hợp lệ: %s", f[2])
	}
	al, err := a.AddAlert(f[0], model.Condition(strings.ToUpper(f[1])), threshold)
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatAlerts([]model.Alert{al})
}
