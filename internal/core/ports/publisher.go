package ports

import (
	"context"

	"github.com/makerhive/access-system/internal/core/domain"
)

// DomainEventHandler reacts to sourcing events raised by other aggregate
// types. Handle must isolate its own failures: the triggering append has
// already committed, so a handler error is logged, never propagated.
type DomainEventHandler interface {
	// EventTypes lists the event type names this handler subscribes to.
	EventTypes() []string
	Handle(ctx context.Context, event domain.SourcingEvent)
}

// DomainEventPublisher notifies registered handlers synchronously after a
// successful append.
type DomainEventPublisher interface {
	Publish(ctx context.Context, event domain.SourcingEvent)
}
