package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/makerhive/access-system/internal/core/domain"
)

const collectionToolEvents = "tool_events"

// ToolRepository replays and appends tool sourcing events.
type ToolRepository struct {
	store eventStore[domain.ToolSourcingEvent]
}

func NewToolRepository(db *mongo.Database) *ToolRepository {
	return &ToolRepository{store: eventStore[domain.ToolSourcingEvent]{
		col:    db.Collection(collectionToolEvents),
		decode: decodeToolEvent,
	}}
}

func decodeToolEvent(eventType string, payload bson.Raw) (domain.ToolSourcingEvent, error) {
	switch eventType {
	case domain.EventTypeToolCreated:
		var e domain.ToolCreated
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeToolDetailsChanged:
		var e domain.ToolDetailsChanged
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeToolDeleted:
		var e domain.ToolDeleted
		return e, bson.Unmarshal(payload, &e)
	}
	return nil, fmt.Errorf("unknown tool event type %q", eventType)
}

func (r *ToolRepository) GetByID(ctx context.Context, id string) (*domain.Tool, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "tool not found", map[string]string{"tool_id": id})
	}

	tool := domain.ReplayTool(events)
	if tool.Deleted {
		return nil, domain.NewNotFound("", "tool is deleted", map[string]string{"tool_id": id})
	}
	return &tool, nil
}

func (r *ToolRepository) GetAll(ctx context.Context) ([]*domain.Tool, error) {
	byID, err := r.store.allEvents(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]*domain.Tool, 0, len(byID))
	for _, events := range byID {
		tool := domain.ReplayTool(events)
		if tool.Deleted {
			continue
		}
		tools = append(tools, &tool)
	}
	return tools, nil
}

func (r *ToolRepository) GetSourcingEventsByID(ctx context.Context, id string) ([]domain.ToolSourcingEvent, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "tool not found", map[string]string{"tool_id": id})
	}
	return events, nil
}

func (r *ToolRepository) Store(ctx context.Context, event domain.ToolSourcingEvent) error {
	return r.store.append(ctx, event)
}

// EnsureIndexes creates the (aggregate_id, version) uniqueness constraint.
func (r *ToolRepository) EnsureIndexes(ctx context.Context) error {
	return r.store.ensureIndexes(ctx)
}
