package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"VNIndexAgent/internal/marks"
)

// DateLayout is the format of stored schedule marks.
const DateLayout = "2006-01-02"

// Mark keys of the built-in daily triggers.
const (
	MorningKey = "lastMorningUpdate"
	EveningKey = "lastEveningUpdate"
)

// TriggerState is the per-day state of a trigger.
type TriggerState string

const (
	PendingToday TriggerState = "PENDING_TODAY"
	FiredToday   TriggerState = "FIRED_TODAY"
)

// Trigger is a once-a-day request fired at an exact wall-clock minute.
type Trigger struct {
	Name    string // used in logs and the audit trail
	MarkKey string
	Hour    int
	Minute  int
	Request string
}

// Controller decides which daily triggers are due. Firing is minute-grained and
// exact: a tick that misses the minute skips that trigger for the day.
type Controller struct {
	mu       sync.Mutex
	store    marks.Store
	triggers []Trigger
	fired    map[string]string // mark key → last fired day, guards against a failing store
	log      zerolog.Logger
}

// NewController creates a controller over store.
func NewController(store marks.Store, triggers []Trigger, log zerolog.Logger) *Controller {
	return &Controller{
		store:    store,
		triggers: triggers,
		fired:    make(map[string]string, len(triggers)),
		log:      log.With().Str("component", "trigger").Logger(),
	}
}

// State reports t's state for now's calendar day.
func (c *Controller) State(t Trigger, now time.Time) TriggerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firedOn(t, now.Format(DateLayout)) {
		return FiredToday
	}
	return PendingToday
}

// Due returns the triggers that fire at now and marks each fired for today
// before returning, so concurrent or repeated ticks in the same minute get nothing.
func (c *Controller) Due(now time.Time) []Trigger {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := now.Format(DateLayout)
	var due []Trigger
	for _, t := range c.triggers {
		if now.Hour() != t.Hour || now.Minute() != t.Minute {
			continue
		}
		if c.fired[t.MarkKey] == today {
			continue
		}
		mark, err := c.readMark(t)
		if err != nil {
			c.log.Error().Err(err).Str("trigger", t.Name).Msg("read schedule mark failed, skipping")
			continue
		}
		if mark == today {
			c.fired[t.MarkKey] = today
			continue
		}

		c.fired[t.MarkKey] = today
		if err := c.store.Set(t.MarkKey, today); err != nil {
			c.log.Error().Err(err).Str("trigger", t.Name).Msg("write schedule mark failed")
		}
		due = append(due, t)
	}
	return due
}

// firedOn consults the in-memory cache first, then the durable mark. Caller holds mu.
func (c *Controller) firedOn(t Trigger, day string) bool {
	if c.fired[t.MarkKey] == day {
		return true
	}
	v, err := c.readMark(t)
	if err != nil {
		return false
	}
	if v == day {
		c.fired[t.MarkKey] = day
		return true
	}
	return false
}

func (c *Controller) readMark(t Trigger) (string, error) {
	v, _, err := c.store.Get(t.MarkKey)
	return v, err
}
