package alert

import (
	"fmt"
	"math"
	"strings"

	"VNIndexAgent/internal/model"
)

// QuickBand is the relative distance of the quick alert pair from the current price.
const QuickBand = 5

// Triggered pairs a fired alert with the price that fired it.
type Triggered struct {
	Alert model.Alert
	Price float64
}

// Result is the outcome of one evaluation pass.
type Result struct {
	Alerts        []model.Alert // full set with fired alerts deactivated
	Triggered     []Triggered
	Notifications []model.Message
}

// Evaluate checks every active alert against prices, in stored order. A fired
// alert comes back with Active=false in the same result, so feeding Result.Alerts
// into the next pass can never fire it again. Alerts whose symbol has no known
// positive price are left untouched.
func Evaluate(alerts []model.Alert, prices model.PriceTable) Result {
	res := Result{Alerts: make([]model.Alert, len(alerts))}
	copy(res.Alerts, alerts)

	for i, a := range res.Alerts {
		if !a.Active {
			continue
		}
		price, ok := prices.Lookup(a.Symbol)
		if !ok || !crossed(a, price) {
			continue
		}
		a.Active = false
		res.Alerts[i] = a
		res.Triggered = append(res.Triggered, Triggered{Alert: a, Price: price})
		res.Notifications = append(res.Notifications,
			model.NewMessage(model.RoleSystem, model.KindAlert, Notification(a, price), nil))
	}
	return res
}

func crossed(a model.Alert, price float64) bool {
	switch a.Condition {
	case model.Above:
		return price > a.Threshold
	case model.Below:
		return price < a.Threshold
	default:
		return false
	}
}

// Notification renders the user-facing text for a fired alert.
func Notification(a model.Alert, price float64) string {
	direction := "vượt qua"
	if a.Condition == model.Below {
		direction = "giảm xuống dưới"
	}
	return fmt.Sprintf("⚠️ **CẢNH BÁO:** Cổ phiếu **%s** đã đạt mức giá **%s**, %s mức cảnh báo %s.",
		a.Symbol, FormatPrice(price), direction, FormatPrice(a.Threshold))
}

// New creates an active alert with a fresh id.
func New(symbol string, cond model.Condition, threshold float64) model.Alert {
	return model.Alert{
		ID:        model.NewID(),
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Condition: cond,
		Threshold: threshold,
		Active:    true,
	}
}

// QuickPair derives an ABOVE alert at +5% and a BELOW alert at -5% of price,
// both floored to a whole currency unit.
func QuickPair(symbol string, price float64) [2]model.Alert {
	return [2]model.Alert{
		New(symbol, model.Above, math.Floor(price*(100+QuickBand)/100)),
		New(symbol, model.Below, math.Floor(price*(100-QuickBand)/100)),
	}
}

// Validate rejects alert input that cannot be evaluated meaningfully.
func Validate(symbol string, cond model.Condition, threshold float64) error {
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if !cond.Valid() {
		return fmt.Errorf("condition %q must be ABOVE or BELOW", cond)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return fmt.Errorf("threshold must be a positive number")
	}
	return nil
}
