package model

import "time"

// Action is the classified advice carried by a model message.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionHold  Action = "HOLD"
	ActionWatch Action = "WATCH"
)

var actionLabels = map[Action]string{
	ActionBuy:   "MUA",
	ActionSell:  "BÁN",
	ActionHold:  "NẮM GIỮ",
	ActionWatch: "THEO DÕI",
}

// Label returns the Vietnamese display label of the action.
func (a Action) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

// SavedRecommendation is a snapshot of advice saved by the user. Never mutated.
type SavedRecommendation struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Action      Action    `json:"action"`
	PriceAtTime float64   `json:"price_at_time"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes"`
}
