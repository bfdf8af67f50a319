package pricefeed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"VNIndexAgent/internal/llm"
	"VNIndexAgent/internal/model"
)

const promptTemplate = `Bạn là một hệ thống dữ liệu chứng khoán thời gian thực (Real-time Stock Data Feed).
Nhiệm vụ: Tìm kiếm giá thị trường hiện tại (Price) mới nhất trên sàn HOSE/HNX/UPCOM cho các mã sau: %s.

YÊU CẦU ĐỊNH DẠNG KẾT QUẢ (Strict Format):
- Trả về danh sách dạng văn bản thuần, mỗi mã một dòng.
- Định dạng dòng: "MÃ: GIÁ"
- GIÁ: Phải là số nguyên (VND) hoặc số thực (với Index).
- QUAN TRỌNG: KHÔNG sử dụng dấu phẩy (,) để phân cách hàng nghìn (VD: viết 135000 thay vì 135,000). Dùng dấu chấm (.) cho số thập phân nếu có.

Ví dụ mong muốn:
FPT: 135200
VN-INDEX: 1254.30
VCB: 92100

Chỉ trả về dữ liệu, không thêm lời dẫn hay giải thích.`

// Fetcher asks the model to search current quotes and parses its reply.
type Fetcher struct {
	client      llm.Client
	temperature float32
	log         zerolog.Logger
}

// NewFetcher creates a price fetcher over client.
func NewFetcher(client llm.Client, temperature float32, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:      client,
		temperature: temperature,
		log:         log.With().Str("component", "pricefeed").Logger(),
	}
}

// Fetch returns the quotes the model reported for symbols. Provider failures and
// unparsable replies both yield an empty table.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) model.PriceTable {
	symbols = Unique(symbols)
	if len(symbols) == 0 {
		return model.PriceTable{}
	}

	res, err := f.client.Generate(ctx, BuildPrompt(symbols), "", llm.Options{
		Search:      true,
		Temperature: f.temperature,
	})
	if err != nil {
		f.log.Warn().Err(err).Msg("price fetch failed")
		return model.PriceTable{}
	}

	prices := ParsePrices(res.Text)
	if len(prices) == 0 {
		f.log.Warn().Str("raw", res.Text).Msg("no prices parsed from reply")
	} else {
		f.log.Debug().Int("count", len(prices)).Msg("prices parsed")
	}
	return prices
}

// BuildPrompt renders the constrained quote request for symbols.
func BuildPrompt(symbols []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(symbols, ", "))
}

// Unique uppercases and deduplicates symbols, preserving first-seen order and
// dropping blanks.
func Unique(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
