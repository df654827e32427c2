package notify

import (
	"context"
	"fmt"
	"sync"
)

// Memory records published events for inspection in tests.
type Memory struct {
	mu     sync.RWMutex
	events []Event
}

// Event captures one publish call.
type Event struct {
	Topic   string
	Payload any
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the event and returns a pseudo id.
func (m *Memory) Publish(_ context.Context, topic string, payload any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{Topic: topic, Payload: payload})
	return fmt.Sprintf("memory-%d", len(m.events)), nil
}

// Events returns a copy of the recorded publishes.
func (m *Memory) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
