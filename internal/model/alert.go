package model

// Condition is the direction an alert watches for.
type Condition string

const (
	Above Condition = "ABOVE"
	Below Condition = "BELOW"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	return c == Above || c == Below
}

// Alert is a one-shot price notification. Once triggered, Active stays false.
type Alert struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Condition Condition `json:"condition"`
	Threshold float64   `json:"threshold"`
	Active    bool      `json:"active"`
}
