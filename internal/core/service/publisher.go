package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// EventPublisher fans a committed sourcing event out to the handlers
// registered for its event type. Dispatch is an explicit table built at
// composition time, so the participants of every cascade are auditable in
// one place. Publish runs handlers synchronously, in registration order.
type EventPublisher struct {
	handlers map[string][]ports.DomainEventHandler
	log      zerolog.Logger
}

// NewEventPublisher returns an empty publisher; register handlers before use.
func NewEventPublisher(log zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		handlers: make(map[string][]ports.DomainEventHandler),
		log:      log,
	}
}

// Register subscribes the handler to every event type it declares.
func (p *EventPublisher) Register(h ports.DomainEventHandler) {
	for _, t := range h.EventTypes() {
		p.handlers[t] = append(p.handlers[t], h)
	}
}

// Publish notifies all handlers registered for the event's type. The append
// has already committed at this point; handlers isolate their own failures.
func (p *EventPublisher) Publish(ctx context.Context, event domain.SourcingEvent) {
	meta := event.Meta()
	for _, h := range p.handlers[event.EventType()] {
		h.Handle(ctx, event)
	}
	p.log.Debug().
		Str("event_type", event.EventType()).
		Str("aggregate_id", meta.AggregateID).
		Int64("version", meta.Version).
		Str("correlation_id", meta.CorrelationID).
		Int("handlers", len(p.handlers[event.EventType()])).
		Msg("event published")
}
