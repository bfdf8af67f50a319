package state

import (
	"time"

	"VNIndexAgent/internal/alert"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/portfolio"
)

// State is the whole application state. Values are treated as immutable:
// Reduce always returns fresh slices and maps.
type State struct {
	Messages        []model.Message
	Prices          model.PriceTable
	Portfolio       []model.PortfolioItem
	Alerts          []model.Alert
	Recommendations []model.SavedRecommendation // newest first
	ActiveSymbol    string
	Composing       int // outstanding model requests
	Refreshing      bool
	LastUpdated     time.Time
}

// IsComposing reports whether any model request is outstanding.
func (s State) IsComposing() bool { return s.Composing > 0 }

// Clone deep-copies s.
func (s State) Clone() State {
	c := s
	c.Messages = append([]model.Message(nil), s.Messages...)
	c.Prices = s.Prices.Clone()
	c.Portfolio = append([]model.PortfolioItem(nil), s.Portfolio...)
	c.Alerts = append([]model.Alert(nil), s.Alerts...)
	c.Recommendations = append([]model.SavedRecommendation(nil), s.Recommendations...)
	return c
}

// Event is a state transition request.
type Event interface{ event() }

type (
	// MessageAppended adds one message to the transcript.
	MessageAppended struct{ Message model.Message }

	// PricesRefreshed merges authoritative quotes, updates holdings and stamps At.
	PricesRefreshed struct {
		Prices model.PriceTable
		At     time.Time
	}

	// SimulatedTick replaces the price table with a perturbed one.
	SimulatedTick struct{ Prices model.PriceTable }

	AlertAdded          struct{ Alerts []model.Alert }
	AlertRemoved        struct{ ID string }
	RecommendationSaved struct{ Recommendation model.SavedRecommendation }
	ActiveSymbolChanged struct{ Symbol string }
	ComposeStarted      struct{}
	ComposeFinished     struct{}
	RefreshFinished     struct{}
)

func (MessageAppended) event()     {}
func (PricesRefreshed) event()     {}
func (SimulatedTick) event()       {}
func (AlertAdded) event()          {}
func (AlertRemoved) event()        {}
func (RecommendationSaved) event() {}
func (ActiveSymbolChanged) event() {}
func (ComposeStarted) event()      {}
func (ComposeFinished) event()     {}
func (RefreshFinished) event()     {}

// Effects reports what a transition produced besides the new state.
type Effects struct {
	Triggered []alert.Triggered
	Appended  []model.Message
}

// Reduce applies e to s. Any transition that changes prices evaluates alerts against
// the new table in the same step, so alerts never see a half-applied update.
func Reduce(s State, e Event) (State, Effects) {
	next := s.Clone()
	var fx Effects

	switch ev := e.(type) {
	case MessageAppended:
		next.Messages = append(next.Messages, ev.Message)
		fx.Appended = append(fx.Appended, ev.Message)

	case PricesRefreshed:
		if len(ev.Prices) == 0 {
			return next, fx
		}
		for sym, p := range ev.Prices {
			next.Prices[sym] = p
		}
		next.Portfolio = portfolio.ApplyPrices(next.Portfolio, ev.Prices)
		next.LastUpdated = ev.At
		fx = evaluate(&next)

	case SimulatedTick:
		if next.Refreshing {
			return next, fx
		}
		next.Prices = ev.Prices.Clone()
		fx = evaluate(&next)

	case AlertAdded:
		next.Alerts = append(next.Alerts, ev.Alerts...)
		fx = evaluate(&next)

	case AlertRemoved:
		out := next.Alerts[:0]
		for _, a := range next.Alerts {
			if a.ID != ev.ID {
				out = append(out, a)
			}
		}
		next.Alerts = out

	case RecommendationSaved:
		next.Recommendations = append([]model.SavedRecommendation{ev.Recommendation}, next.Recommendations...)

	case ActiveSymbolChanged:
		if ev.Symbol != "" {
			next.ActiveSymbol = ev.Symbol
		}

	case ComposeStarted:
		next.Composing++

	case ComposeFinished:
		if next.Composing > 0 {
			next.Composing--
		}

	case RefreshFinished:
		next.Refreshing = false
	}
	return next, fx
}

func evaluate(s *State) Effects {
	res := alert.Evaluate(s.Alerts, s.Prices)
	s.Alerts = res.Alerts
	s.Messages = append(s.Messages, res.Notifications...)
	return Effects{Triggered: res.Triggered, Appended: res.Notifications}
}
