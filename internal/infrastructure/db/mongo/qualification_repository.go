package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/makerhive/access-system/internal/core/domain"
)

const collectionQualificationEvents = "qualification_events"

// QualificationRepository replays and appends qualification sourcing events.
type QualificationRepository struct {
	store eventStore[domain.QualificationSourcingEvent]
}

func NewQualificationRepository(db *mongo.Database) *QualificationRepository {
	return &QualificationRepository{store: eventStore[domain.QualificationSourcingEvent]{
		col:    db.Collection(collectionQualificationEvents),
		decode: decodeQualificationEvent,
	}}
}

func decodeQualificationEvent(eventType string, payload bson.Raw) (domain.QualificationSourcingEvent, error) {
	switch eventType {
	case domain.EventTypeQualificationCreated:
		var e domain.QualificationCreated
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeQualificationDetailsChanged:
		var e domain.QualificationDetailsChanged
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeQualificationDeleted:
		var e domain.QualificationDeleted
		return e, bson.Unmarshal(payload, &e)
	}
	return nil, fmt.Errorf("unknown qualification event type %q", eventType)
}

func (r *QualificationRepository) GetByID(ctx context.Context, id string) (*domain.Qualification, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "qualification not found", map[string]string{"qualification_id": id})
	}

	qualification := domain.ReplayQualification(events)
	if qualification.Deleted {
		return nil, domain.NewNotFound("", "qualification is deleted", map[string]string{"qualification_id": id})
	}
	return &qualification, nil
}

func (r *QualificationRepository) GetAll(ctx context.Context) ([]*domain.Qualification, error) {
	byID, err := r.store.allEvents(ctx)
	if err != nil {
		return nil, err
	}

	qualifications := make([]*domain.Qualification, 0, len(byID))
	for _, events := range byID {
		qualification := domain.ReplayQualification(events)
		if qualification.Deleted {
			continue
		}
		qualifications = append(qualifications, &qualification)
	}
	return qualifications, nil
}

func (r *QualificationRepository) GetSourcingEventsByID(ctx context.Context, id string) ([]domain.QualificationSourcingEvent, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "qualification not found", map[string]string{"qualification_id": id})
	}
	return events, nil
}

func (r *QualificationRepository) Store(ctx context.Context, event domain.QualificationSourcingEvent) error {
	return r.store.append(ctx, event)
}

// EnsureIndexes creates the (aggregate_id, version) uniqueness constraint.
func (r *QualificationRepository) EnsureIndexes(ctx context.Context) error {
	return r.store.ensureIndexes(ctx)
}
