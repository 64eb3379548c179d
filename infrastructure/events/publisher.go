// Package events delivers domain events to in-process subscribers.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	domainevents "github.com/BeadW/vyb-web-sub000/domain/events"
)

// Handler consumes one domain event. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(ctx context.Context, event domainevents.DomainEvent)

// Bus is a minimal in-process publisher implementing ports.EventPublisher.
// Subscribers register by event type; "*" receives everything.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates an event bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type. Use "*" to receive all
// events.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish fans each event out to its subscribers
func (b *Bus) Publish(ctx context.Context, events ...domainevents.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		b.logger.Debug("publishing domain event",
			zap.String("event_type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
		)
		for _, handler := range b.handlers[event.GetEventType()] {
			handler(ctx, event)
		}
		for _, handler := range b.handlers["*"] {
			handler(ctx, event)
		}
	}
	return nil
}
