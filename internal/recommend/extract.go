package recommend

import (
	"strings"
	"time"
	"unicode/utf8"

	"VNIndexAgent/internal/model"
)

// Rule maps a set of keywords to an action. Rules are tried in table order and
// the first rule with any keyword present in the text wins.
type Rule struct {
	Action   model.Action
	Keywords []string
}

// DefaultRules is the keyword precedence table: buy, then sell, then hold.
// Text matching none of them is classified as watch.
var DefaultRules = []Rule{
	{Action: model.ActionBuy, Keywords: []string{"MUA", "BUY"}},
	{Action: model.ActionSell, Keywords: []string{"BÁN", "SELL"}},
	{Action: model.ActionHold, Keywords: []string{"NẮM GIỮ", "GIỮ", "HOLD", "KEEP"}},
}

const notesLimit = 100

// Extractor classifies model messages into saved recommendations.
type Extractor struct {
	Rules   []Rule
	Symbols []string // watchlist scanned in order for the symbol
}

// NewExtractor creates an extractor using DefaultRules over symbols.
func NewExtractor(symbols []string) *Extractor {
	return &Extractor{Rules: DefaultRules, Symbols: symbols}
}

// Classify returns the action of the first rule with a keyword in text.
func (e *Extractor) Classify(text string) model.Action {
	upper := strings.ToUpper(text)
	for _, r := range e.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(upper, kw) {
				return r.Action
			}
		}
	}
	return model.ActionWatch
}

// Symbol returns the first watchlist symbol appearing in text, or fallback.
func (e *Extractor) Symbol(text, fallback string) string {
	upper := strings.ToUpper(text)
	for _, s := range e.Symbols {
		if strings.Contains(upper, s) {
			return s
		}
	}
	return fallback
}

// Extract returns the action and symbol for text.
func (e *Extractor) Extract(text, fallback string) (model.Action, string) {
	return e.Classify(text), e.Symbol(text, fallback)
}

// Build snapshots msg into a saved recommendation priced from prices.
// An unknown price is recorded as 0.
func (e *Extractor) Build(msg model.Message, fallback string, prices model.PriceTable, now time.Time) model.SavedRecommendation {
	action, symbol := e.Extract(msg.Text, fallback)
	price, _ := prices.Lookup(symbol)
	return model.SavedRecommendation{
		ID:          model.NewID(),
		Symbol:      symbol,
		Action:      action,
		PriceAtTime: price,
		Date:        now,
		Notes:       Notes(msg.Text),
	}
}

// Notes truncates text to its first 100 characters followed by an ellipsis.
func Notes(text string) string {
	if utf8.RuneCountInString(text) <= notesLimit {
		return text + "..."
	}
	return string([]rune(text)[:notesLimit]) + "..."
}
