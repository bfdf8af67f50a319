package state

import (
	"errors"
	"sync"

	"VNIndexAgent/internal/model"
)

var (
	ErrAlertNotFound   = errors.New("alert not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Listener observes effects of a dispatched event. It runs after the store lock
// is released and must not block for long.
type Listener func(Effects)

// Store serializes transitions over a single State.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []Listener
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	if initial.Prices == nil {
		initial.Prices = model.PriceTable{}
	}
	return &Store{state: initial.Clone()}
}

// Subscribe registers l for every subsequent dispatch.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Dispatch applies e and returns its effects.
func (s *Store) Dispatch(e Event) Effects {
	return s.Update(func(State) Event { return e })
}

// Update builds an event from the current state and applies it atomically.
// build returning nil leaves the state untouched.
func (s *Store) Update(build func(State) Event) Effects {
	s.mu.Lock()
	e := build(s.state.Clone())
	if e == nil {
		s.mu.Unlock()
		return Effects{}
	}
	next, fx := Reduce(s.state, e)
	s.state = next
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if len(fx.Appended) == 0 && len(fx.Triggered) == 0 {
		return fx
	}
	for _, l := range listeners {
		l(fx)
	}
	return fx
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// TryBeginRefresh marks a refresh in flight. It returns false when one already is.
func (s *Store) TryBeginRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Refreshing {
		return false
	}
	s.state.Refreshing = true
	return true
}

// RemoveAlert deletes the alert with id.
func (s *Store) RemoveAlert(id string) error {
	found := false
	s.Update(func(st State) Event {
		for _, a := range st.Alerts {
			if a.ID == id {
				found = true
				return AlertRemoved{ID: id}
			}
		}
		return nil
	})
	if !found {
		return ErrAlertNotFound
	}
	return nil
}

// Message returns the transcript entry with id.
func (s *Store) Message(id string) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.state.Messages {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Message{}, ErrMessageNotFound
}
