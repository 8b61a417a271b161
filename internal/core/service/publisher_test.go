package service

import (
	"context"
	"sync"
	"testing"

	"github.com/makerhive/access-system/internal/core/domain"
)

type recordingHandler struct {
	types []string

	mu      sync.Mutex
	handled []domain.SourcingEvent
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) Handle(_ context.Context, event domain.SourcingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
}

func TestEventPublisher_DispatchesByEventType(t *testing.T) {
	publisher := NewEventPublisher(discardLogger)
	toolHandler := &recordingHandler{types: []string{domain.EventTypeToolDeleted}}
	qualHandler := &recordingHandler{types: []string{domain.EventTypeQualificationDeleted}}
	publisher.Register(toolHandler)
	publisher.Register(qualHandler)

	publisher.Publish(context.Background(), domain.ToolDeleted{EventMeta: domain.EventMeta{
		AggregateID: "t1", Version: 2, ActorID: "admin1", CorrelationID: "corr1", Timestamp: testTime,
	}})

	if len(toolHandler.handled) != 1 {
		t.Errorf("tool handler expected 1 event, got %d", len(toolHandler.handled))
	}
	if len(qualHandler.handled) != 0 {
		t.Errorf("qualification handler must not receive tool events, got %d", len(qualHandler.handled))
	}
}

func TestEventPublisher_MultipleHandlersSameType(t *testing.T) {
	publisher := NewEventPublisher(discardLogger)
	first := &recordingHandler{types: []string{domain.EventTypeQualificationDeleted}}
	second := &recordingHandler{types: []string{domain.EventTypeQualificationDeleted}}
	publisher.Register(first)
	publisher.Register(second)

	publisher.Publish(context.Background(), domain.QualificationDeleted{EventMeta: domain.EventMeta{
		AggregateID: "q1", Version: 2, ActorID: "admin1", CorrelationID: "corr1", Timestamp: testTime,
	}})

	if len(first.handled) != 1 || len(second.handled) != 1 {
		t.Errorf("both handlers must receive the event: %d/%d", len(first.handled), len(second.handled))
	}
}

func TestEventPublisher_NoHandlersIsNoop(t *testing.T) {
	publisher := NewEventPublisher(discardLogger)

	// Must not panic and must not block.
	publisher.Publish(context.Background(), domain.ToolDeleted{EventMeta: domain.EventMeta{
		AggregateID: "t1", Version: 2, ActorID: "admin1", CorrelationID: "corr1", Timestamp: testTime,
	}})
}
