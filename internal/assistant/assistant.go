package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"VNIndexAgent/internal/alert"
	"VNIndexAgent/internal/indicator"
	"VNIndexAgent/internal/llm"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/portfolio"
	"VNIndexAgent/internal/strategy"
)

// Config tunes the orchestrator.
type Config struct {
	Temperature     float32
	HistoryTurns    int // recent user/model messages rendered into the prompt; 0 disables
	ResearchSymbols []string
	DefaultPrice    float64 // indicator base when a research symbol has no quote
}

// Assistant builds prompts, calls the model and turns replies into messages.
// It never returns an error: provider failures become apology messages.
type Assistant struct {
	client     llm.Client
	indicators indicator.Generator
	cfg        Config
	log        zerolog.Logger
}

// New creates an assistant.
func New(client llm.Client, indicators indicator.Generator, cfg Config, log zerolog.Logger) *Assistant {
	return &Assistant{
		client:     client,
		indicators: indicators,
		cfg:        cfg,
		log:        log.With().Str("component", "assistant").Logger(),
	}
}

// Ask sends request with an optional context prefix and returns the model reply.
func (a *Assistant) Ask(ctx context.Context, history []model.Message, request, contextPrefix string) model.Message {
	return a.ask(ctx, history, request, contextPrefix, model.KindChat)
}

func (a *Assistant) ask(ctx context.Context, history []model.Message, request, contextPrefix string, kind model.MessageKind) model.Message {
	prompt := BuildPrompt(history, request, contextPrefix, a.cfg.HistoryTurns)

	res, err := a.client.Generate(ctx, prompt, SystemInstruction, llm.Options{
		Search:      true,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		a.log.Warn().Err(err).Str("kind", string(kind)).Msg("generation failed")
		return model.NewMessage(model.RoleModel, kind, ErrorReply, []model.Source{})
	}

	text := res.Text
	if strings.TrimSpace(text) == "" {
		text = EmptyReply
	}
	a.log.Debug().Str("kind", string(kind)).Int("sources", len(res.Sources)).Msg("reply received")
	return model.NewMessage(model.RoleModel, kind, text, res.Sources)
}

// ResearchContext is the resolved target and indicator block of a research request.
type ResearchContext struct {
	Symbol     string
	Indicators model.TechnicalIndicators
	Prefix     string
}

// PrepareResearch resolves the research symbol from text, falling back to
// activeSymbol, and renders its indicator block.
func (a *Assistant) PrepareResearch(ctx context.Context, text, activeSymbol string, prices model.PriceTable) ResearchContext {
	symbol := ResolveSymbol(text, a.cfg.ResearchSymbols, activeSymbol)

	price, known := prices.Lookup(symbol)
	base := price
	if !known {
		base = a.cfg.DefaultPrice
	}
	ind := a.indicators.Generate(ctx, symbol, base)

	shown := "N/A"
	if known {
		shown = alert.FormatPrice(price)
	}
	return ResearchContext{
		Symbol:     symbol,
		Indicators: ind,
		Prefix:     ResearchPrefix(ind, shown),
	}
}

// Research answers text in research mode.
func (a *Assistant) Research(ctx context.Context, history []model.Message, text string, rc ResearchContext) model.Message {
	return a.ask(ctx, history, text, rc.Prefix, model.KindChat)
}

// Review requests a diversification review of items.
func (a *Assistant) Review(ctx context.Context, history []model.Message, items []model.PortfolioItem) model.Message {
	msg := a.ask(ctx, history, ReviewRequest(portfolio.Value(items)), reviewHint, model.KindReview)
	msg.Text = reviewHeader + msg.Text
	return msg
}

// Briefing runs a scheduled briefing request.
func (a *Assistant) Briefing(ctx context.Context, history []model.Message, request string) model.Message {
	return a.ask(ctx, history, request, briefingHint, model.KindBriefing)
}

// BuildPrompt assembles the final prompt: the recent transcript, then the
// context prefix and the request, or the bare request when there is no prefix.
func BuildPrompt(history []model.Message, request, contextPrefix string, turns int) string {
	prompt := request
	if contextPrefix != "" {
		prompt = contextPrefix + requestSeparator + request
	}
	if transcript := Transcript(history, turns); transcript != "" {
		prompt = transcript + "\n\n" + prompt
	}
	return prompt
}

// Transcript renders the last turns user/model messages. System notices and the
// welcome message are not conversation and are left out.
func Transcript(history []model.Message, turns int) string {
	if turns <= 0 {
		return ""
	}
	var picked []model.Message
	for i := len(history) - 1; i >= 0 && len(picked) < turns; i-- {
		m := history[i]
		if m.Kind == model.KindWelcome || (m.Role != model.RoleUser && m.Role != model.RoleModel) {
			continue
		}
		picked = append(picked, m)
	}
	if len(picked) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(historyHeader)
	for i := len(picked) - 1; i >= 0; i-- {
		speaker := "Trợ lý"
		if picked[i].Role == model.RoleUser {
			speaker = "Người dùng"
		}
		fmt.Fprintf(&b, "\n%s: %s", speaker, picked[i].Text)
	}
	return b.String()
}

// ResolveSymbol returns the first of symbols appearing in text, or fallback.
func ResolveSymbol(text string, symbols []string, fallback string) string {
	upper := strings.ToUpper(text)
	for _, s := range symbols {
		if strings.Contains(upper, s) {
			return s
		}
	}
	return fallback
}

// ResearchPrefix renders the indicator block with its fixed analysis steps.
func ResearchPrefix(ind model.TechnicalIndicators, shownPrice string) string {
	return fmt.Sprintf(researchTemplate,
		ind.Symbol,
		ind.RSI, strategy.ClassifyRSI(ind.RSI).Commentary(),
		ind.MACD, ind.Signal, strategy.MACDCommentary(ind.MACD, ind.Signal),
		shownPrice,
		ind.SMA20,
		ind.SMA50,
		ind.Trend,
	)
}

// ReviewRequest renders the diversification review request for s.
func ReviewRequest(s portfolio.Summary) string {
	return fmt.Sprintf(reviewTemplate, alert.FormatPrice(s.TotalValue), portfolio.SectorBreakdown(s), s.Concentration)
}

// AnalyzeRequest renders the portfolio analysis question sent as a user message.
func AnalyzeRequest(items []model.PortfolioItem) string {
	return fmt.Sprintf(analyzeTemplate, portfolio.HoldingsSummary(items))
}
