package testutil

import (
	"sync"

	"github.com/roach88/tagvault/internal/tag"
)

// Sink captures emitted events in order.
type Sink struct {
	mu     sync.Mutex
	events []tag.Event
}

// NewSink creates an empty capturing sink.
func NewSink() *Sink {
	return &Sink{}
}

// Emit implements the event sink interface.
func (s *Sink) Emit(ev tag.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns every captured event in emission order.
func (s *Sink) Events() []tag.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tag.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Last returns the most recently captured event, or a zero Event if none.
func (s *Sink) Last() tag.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return tag.Event{}
	}
	return s.events[len(s.events)-1]
}
