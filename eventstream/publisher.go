package eventstream

import (
	"context"
	"sync"
)

// Publisher publishes turn events to an event stream backend.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnEvent) error
	Close() error
}

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []TurnEvent
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// PublishTurn records a copy of event.
func (p *MemoryPublisher) PublishTurn(_ context.Context, event *TurnEvent) error {
	if event == nil {
		return ErrNilTurnEvent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

// Events returns the events published so far.
func (p *MemoryPublisher) Events() []TurnEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TurnEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Close is a no-op.
func (p *MemoryPublisher) Close() error {
	return nil
}
