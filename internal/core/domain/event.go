package domain

import "time"

// EventMeta is the metadata every sourcing event carries: which aggregate it
// belongs to, the version it establishes, who caused it, when, and the
// correlation id tracing it back to the originating request.
type EventMeta struct {
	AggregateID   string    `bson:"aggregate_id" json:"aggregate_id"`
	Version       int64     `bson:"version" json:"version"`
	ActorID       string    `bson:"actor_id" json:"actor_id"`
	CorrelationID string    `bson:"correlation_id" json:"correlation_id"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
}

// Meta lets every event expose its metadata by embedding EventMeta.
func (m EventMeta) Meta() EventMeta { return m }

// SourcingEvent is an immutable fact recording one accepted state transition
// of an aggregate. An event targeting version N is only appendable while the
// aggregate is at version N-1; creation events target version 1.
type SourcingEvent interface {
	Meta() EventMeta
	// EventType returns the stable wire name of the event variant,
	// e.g. "device.tool_attached".
	EventType() string
}

// newEventMeta builds the metadata for the next event of an aggregate
// currently at currentVersion.
func newEventMeta(aggregateID string, currentVersion int64, actorID, correlationID string, now time.Time) EventMeta {
	return EventMeta{
		AggregateID:   aggregateID,
		Version:       currentVersion + 1,
		ActorID:       actorID,
		CorrelationID: correlationID,
		Timestamp:     now.UTC(),
	}
}

// creationMeta builds the metadata for a creation event (version 1).
func creationMeta(aggregateID, actorID, correlationID string, now time.Time) EventMeta {
	return newEventMeta(aggregateID, 0, actorID, correlationID, now)
}
