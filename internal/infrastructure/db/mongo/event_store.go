package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/makerhive/access-system/internal/core/domain"
)

// eventDocument is the persisted shape of a sourcing event. The metadata is
// lifted to top-level fields for indexing and ordering; the full event is
// kept as a raw payload decoded back through the aggregate's codec.
type eventDocument struct {
	AggregateID   string    `bson:"aggregate_id"`
	Version       int64     `bson:"version"`
	ActorID       string    `bson:"actor_id"`
	CorrelationID string    `bson:"correlation_id"`
	Timestamp     time.Time `bson:"timestamp"`
	EventType     string    `bson:"event_type"`
	Payload       bson.Raw  `bson:"payload"`
}

// eventStore is the shared append/replay machinery behind every aggregate
// repository: one collection per aggregate type, a unique compound index on
// (aggregate_id, version), and a codec mapping event type names back to
// concrete event variants.
type eventStore[E domain.SourcingEvent] struct {
	col    *mongo.Collection
	decode func(eventType string, payload bson.Raw) (E, error)
}

// ensureIndexes creates the uniqueness constraint the optimistic concurrency
// check relies on. Must run before the store serves writes.
func (s *eventStore[E]) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "aggregate_id", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// append stores the event only if its target version is exactly one past the
// latest persisted version for its aggregate id. Two racers targeting the
// same version both pass the read check at worst; the unique index then
// rejects the loser, which surfaces as a VersionConflict.
func (s *eventStore[E]) append(ctx context.Context, event E) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	meta := event.Meta()

	latest, err := s.latestVersion(ctx, meta.AggregateID)
	if err != nil {
		return domain.NewStorageUnavailable(meta.CorrelationID, err)
	}
	if latest != meta.Version-1 {
		return domain.NewVersionConflict(meta.CorrelationID, "aggregate version changed since load", map[string]string{
			"aggregate_id":      meta.AggregateID,
			"target_version":    fmt.Sprintf("%d", meta.Version),
			"persisted_version": fmt.Sprintf("%d", latest),
		})
	}

	payload, err := bson.Marshal(event)
	if err != nil {
		return domain.NewStorageUnavailable(meta.CorrelationID, err)
	}

	_, err = s.col.InsertOne(ctx, eventDocument{
		AggregateID:   meta.AggregateID,
		Version:       meta.Version,
		ActorID:       meta.ActorID,
		CorrelationID: meta.CorrelationID,
		Timestamp:     meta.Timestamp,
		EventType:     event.EventType(),
		Payload:       payload,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewVersionConflict(meta.CorrelationID, "concurrent append won the race", map[string]string{
				"aggregate_id":   meta.AggregateID,
				"target_version": fmt.Sprintf("%d", meta.Version),
			})
		}
		return domain.NewStorageUnavailable(meta.CorrelationID, err)
	}
	return nil
}

// latestVersion returns the highest stored version for the id, 0 when none.
func (s *eventStore[E]) latestVersion(ctx context.Context, aggregateID string) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	var doc eventDocument
	err := s.col.FindOne(ctx, bson.M{"aggregate_id": aggregateID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Version, nil
}

// eventsByID returns the decoded events for one aggregate id in ascending
// version order.
func (s *eventStore[E]) eventsByID(ctx context.Context, aggregateID string) ([]E, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "version", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{"aggregate_id": aggregateID}, opts)
	if err != nil {
		return nil, domain.NewStorageUnavailable("", err)
	}
	defer cursor.Close(ctx)

	var events []E
	for cursor.Next(ctx) {
		event, err := s.decodeDocument(cursor.Current)
		if err != nil {
			return nil, domain.NewStorageUnavailable("", err)
		}
		events = append(events, event)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageUnavailable("", err)
	}
	return events, nil
}

// allEvents returns every aggregate's decoded events keyed by id, each list
// in ascending version order.
func (s *eventStore[E]) allEvents(ctx context.Context) (map[string][]E, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "aggregate_id", Value: 1}, {Key: "version", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, domain.NewStorageUnavailable("", err)
	}
	defer cursor.Close(ctx)

	byID := make(map[string][]E)
	for cursor.Next(ctx) {
		event, err := s.decodeDocument(cursor.Current)
		if err != nil {
			return nil, domain.NewStorageUnavailable("", err)
		}
		id := event.Meta().AggregateID
		byID[id] = append(byID[id], event)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageUnavailable("", err)
	}
	return byID, nil
}

func (s *eventStore[E]) decodeDocument(raw bson.Raw) (E, error) {
	var zero E

	var doc eventDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return zero, err
	}
	event, err := s.decode(doc.EventType, doc.Payload)
	if err != nil {
		return zero, fmt.Errorf("decode %s@%d (%s): %w", doc.AggregateID, doc.Version, doc.EventType, err)
	}
	return event, nil
}
