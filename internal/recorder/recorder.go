package recorder

import "time"

// BriefingRun records one fired scheduled request (briefing or review).
type BriefingRun struct {
	Trigger string // "morning", "evening", "review"
	Date    string // local calendar day the trigger fired for
	Failed  bool   // the model call was absorbed into an apology
	Sources int
}

// AlertTrigger records a fired price alert.
type AlertTrigger struct {
	AlertID   string
	Symbol    string
	Condition string
	Threshold float64
	Price     float64
}

// PriceRefresh records one authoritative refresh attempt.
type PriceRefresh struct {
	Requested int
	Parsed    int
	Accepted  int
	Rejected  int
	Duration  time.Duration
}

// Recorder persists an audit trail of automated activity.
type Recorder interface {
	RecordBriefing(evt *BriefingRun) error
	RecordAlertTrigger(evt *AlertTrigger) error
	RecordPriceRefresh(evt *PriceRefresh) error
	Close() error
}
