package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"VNIndexAgent/internal/alert"
	"VNIndexAgent/internal/assistant"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/portfolio"
	"VNIndexAgent/internal/pricefeed"
	"VNIndexAgent/internal/recommend"
	"VNIndexAgent/internal/recorder"
	"VNIndexAgent/internal/scheduler"
	"VNIndexAgent/internal/state"
)

var (
	ErrUnknownPrice    = errors.New("no current price for symbol")
	ErrNotModelMessage = errors.New("only assistant messages can be saved")
	ErrEmptyText       = errors.New("text is required")
)

// PriceSource fetches authoritative quotes.
type PriceSource interface {
	Fetch(ctx context.Context, symbols []string) model.PriceTable
}

// Market is the symbol configuration of the controller.
type Market struct {
	IndexSymbol string
	Watchlist   []string
	MaxJumpPct  float64
}

// App owns the application state and runs every user and timer action against it.
type App struct {
	store     *state.Store
	assistant *assistant.Assistant
	prices    PriceSource
	extractor *recommend.Extractor
	sim       *pricefeed.Simulator
	rec       recorder.Recorder
	market    Market
	now       func() time.Time
	log       zerolog.Logger
}

// Deps groups the collaborators of App.
type Deps struct {
	Store     *state.Store
	Assistant *assistant.Assistant
	Prices    PriceSource
	Extractor *recommend.Extractor
	Simulator *pricefeed.Simulator
	Recorder  recorder.Recorder
}

// New creates the controller and subscribes the alert audit trail.
func New(d Deps, market Market, log zerolog.Logger) *App {
	rec := d.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	a := &App{
		store:     d.Store,
		assistant: d.Assistant,
		prices:    d.Prices,
		extractor: d.Extractor,
		sim:       d.Simulator,
		rec:       rec,
		market:    market,
		now:       time.Now,
		log:       log.With().Str("component", "app").Logger(),
	}
	a.store.Subscribe(a.recordTriggers)
	return a
}

// InitialState builds the startup state with the welcome message.
func InitialState(prices model.PriceTable, holdings []model.PortfolioItem, activeSymbol string) state.State {
	return state.State{
		Messages:     []model.Message{model.NewMessage(model.RoleModel, model.KindWelcome, assistant.Welcome, nil)},
		Prices:       prices.Clone(),
		Portfolio:    append([]model.PortfolioItem(nil), holdings...),
		ActiveSymbol: activeSymbol,
	}
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() state.State {
	return a.store.Snapshot()
}

// Chat appends the user's text, asks the assistant and appends the reply. In
// research mode the resolved symbol becomes the active symbol and its indicators
// are sent with the request.
func (a *App) Chat(ctx context.Context, text string, research bool) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, ErrEmptyText
	}

	history := a.store.Snapshot().Messages
	a.store.Dispatch(state.MessageAppended{Message: model.NewMessage(model.RoleUser, model.KindChat, text, nil)})

	return a.compose(func() model.Message {
		if !research {
			return a.assistant.Ask(ctx, history, text, "")
		}
		snap := a.store.Snapshot()
		rc := a.assistant.PrepareResearch(ctx, text, snap.ActiveSymbol, snap.Prices)
		a.store.Dispatch(state.ActiveSymbolChanged{Symbol: rc.Symbol})
		a.log.Info().Str("symbol", rc.Symbol).Float64("rsi", rc.Indicators.RSI).
			Str("trend", string(rc.Indicators.Trend)).Msg("research request")
		return a.assistant.Research(ctx, history, text, rc)
	}), nil
}

// AnalyzePortfolio sends the holdings summary as a user question.
func (a *App) AnalyzePortfolio(ctx context.Context) (model.Message, error) {
	return a.Chat(ctx, assistant.AnalyzeRequest(a.store.Snapshot().Portfolio), false)
}

// ReviewPortfolio runs a diversification review of the current holdings.
func (a *App) ReviewPortfolio(ctx context.Context) model.Message {
	snap := a.store.Snapshot()
	msg := a.compose(func() model.Message {
		return a.assistant.Review(ctx, snap.Messages, snap.Portfolio)
	})
	a.recordBriefing("review", a.now().Format(scheduler.DateLayout), msg)
	return msg
}

// Briefing runs a fired daily trigger.
func (a *App) Briefing(ctx context.Context, t scheduler.Trigger, day string) model.Message {
	history := a.store.Snapshot().Messages
	msg := a.compose(func() model.Message {
		return a.assistant.Briefing(ctx, history, t.Request)
	})
	a.recordBriefing(t.Name, day, msg)
	return msg
}

// compose brackets one model request with the composing counter and appends its reply.
func (a *App) compose(run func() model.Message) model.Message {
	a.store.Dispatch(state.ComposeStarted{})
	defer a.store.Dispatch(state.ComposeFinished{})

	msg := run()
	a.store.Dispatch(state.MessageAppended{Message: msg})
	return msg
}

// SimulateTick perturbs every quote once, unless a refresh is in flight.
func (a *App) SimulateTick() {
	a.store.Update(func(s state.State) state.Event {
		if s.Refreshing || len(s.Prices) == 0 {
			return nil
		}
		return state.SimulatedTick{Prices: a.sim.Step(s.Prices)}
	})
}

// RefreshResult summarizes one refresh attempt.
type RefreshResult struct {
	Skipped  bool // another refresh was already in flight
	Symbols  []string
	Accepted model.PriceTable
	Rejected []pricefeed.Rejection
}

// RefreshPrices fetches quotes for the index, holdings, active symbol and watchlist,
// and merges the accepted ones. A request while another is in flight returns at once.
func (a *App) RefreshPrices(ctx context.Context) RefreshResult {
	if !a.store.TryBeginRefresh() {
		a.log.Debug().Msg("refresh already in flight, coalesced")
		return RefreshResult{Skipped: true}
	}
	defer a.store.Dispatch(state.RefreshFinished{})

	start := a.now()
	symbols := a.refreshSymbols(a.store.Snapshot())
	parsed := a.prices.Fetch(ctx, symbols)

	var res RefreshResult
	res.Symbols = symbols
	a.store.Update(func(s state.State) state.Event {
		_, res.Accepted, res.Rejected = pricefeed.Merge(s.Prices, parsed, a.market.MaxJumpPct)
		if len(res.Accepted) == 0 {
			return nil
		}
		return state.PricesRefreshed{Prices: res.Accepted, At: a.now()}
	})

	for _, r := range res.Rejected {
		a.log.Warn().Str("symbol", r.Symbol).Float64("current", r.Current).Float64("incoming", r.Incoming).
			Msg("price jump rejected")
	}
	a.log.Info().Int("requested", len(symbols)).Int("parsed", len(parsed)).Int("accepted", len(res.Accepted)).
		Msg("prices refreshed")

	if err := a.rec.RecordPriceRefresh(&recorder.PriceRefresh{
		Requested: len(symbols),
		Parsed:    len(parsed),
		Accepted:  len(res.Accepted),
		Rejected:  len(res.Rejected),
		Duration:  a.now().Sub(start),
	}); err != nil {
		a.log.Error().Err(err).Msg("record price refresh")
	}
	return res
}

func (a *App) refreshSymbols(s state.State) []string {
	symbols := []string{a.market.IndexSymbol}
	symbols = append(symbols, portfolio.Symbols(s.Portfolio)...)
	symbols = append(symbols, s.ActiveSymbol)
	symbols = append(symbols, a.market.Watchlist...)
	return pricefeed.Unique(symbols)
}

// AddAlert validates and stores a new active alert.
func (a *App) AddAlert(symbol string, cond model.Condition, threshold float64) (model.Alert, error) {
	if err := alert.Validate(symbol, cond, threshold); err != nil {
		return model.Alert{}, err
	}
	al := alert.New(symbol, cond, threshold)
	a.store.Dispatch(state.AlertAdded{Alerts: []model.Alert{al}})
	return al, nil
}

// QuickAlerts stores the ±5% alert pair around symbol's current price.
func (a *App) QuickAlerts(symbol string) ([2]model.Alert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	price, ok := a.store.Snapshot().Prices.Lookup(symbol)
	if !ok {
		return [2]model.Alert{}, fmt.Errorf("%s: %w", symbol, ErrUnknownPrice)
	}
	pair := alert.QuickPair(symbol, price)
	a.store.Dispatch(state.AlertAdded{Alerts: pair[:]})
	return pair, nil
}

// RemoveAlert deletes an alert by id.
func (a *App) RemoveAlert(id string) error {
	return a.store.RemoveAlert(id)
}

// SaveRecommendation snapshots an assistant message into the recommendation history.
func (a *App) SaveRecommendation(messageID string) (model.SavedRecommendation, error) {
	msg, err := a.store.Message(messageID)
	if err != nil {
		return model.SavedRecommendation{}, err
	}
	if msg.Role != model.RoleModel {
		return model.SavedRecommendation{}, ErrNotModelMessage
	}
	snap := a.store.Snapshot()
	rec := a.extractor.Build(msg, snap.ActiveSymbol, snap.Prices, a.now())
	a.store.Dispatch(state.RecommendationSaved{Recommendation: rec})
	return rec, nil
}

// SetActiveSymbol changes the chart symbol.
func (a *App) SetActiveSymbol(symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errors.New("symbol is required")
	}
	a.store.Dispatch(state.ActiveSymbolChanged{Symbol: symbol})
	return nil
}

func (a *App) recordTriggers(fx state.Effects) {
	for _, t := range fx.Triggered {
		a.log.Info().Str("symbol", t.Alert.Symbol).Str("condition", string(t.Alert.Condition)).
			Float64("threshold", t.Alert.Threshold).Float64("price", t.Price).Msg("alert triggered")
		if err := a.rec.RecordAlertTrigger(&recorder.AlertTrigger{
			AlertID:   t.Alert.ID,
			Symbol:    t.Alert.Symbol,
			Condition: string(t.Alert.Condition),
			Threshold: t.Alert.Threshold,
			Price:     t.Price,
		}); err != nil {
			a.log.Error().Err(err).Msg("record alert trigger")
		}
	}
}

func (a *App) recordBriefing(name, day string, msg model.Message) {
	if err := a.rec.RecordBriefing(&recorder.BriefingRun{
		Trigger: name,
		Date:    day,
		Failed:  strings.HasSuffix(msg.Text, assistant.ErrorReply),
		Sources: len(msg.Sources),
	}); err != nil {
		a.log.Error().Err(err).Str("trigger", name).Msg("record briefing")
	}
}

// Hooks adapts the controller to the scheduler.
func (a *App) Hooks() scheduler.Hooks {
	return hooks{a}
}

type hooks struct{ a *App }

func (h hooks) Briefing(ctx context.Context, t scheduler.Trigger, day string) {
	h.a.Briefing(ctx, t, day)
}
func (h hooks) SimulateTick()                     { h.a.SimulateTick() }
func (h hooks) RefreshPrices(ctx context.Context) { h.a.RefreshPrices(ctx) }
func (h hooks) Review(ctx context.Context)        { h.a.ReviewPortfolio(ctx) }
