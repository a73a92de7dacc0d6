package audit

import (
	"context"
	"sync"
)

// InMemorySink collects events for tests and dev.
type InMemorySink struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemorySink constructs an empty in-memory sink.
func NewMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *InMemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
