package domain

import "time"

// Qualification is a competence a member can hold or an instructor can teach.
// Tools reference the qualifications they require by id.
type Qualification struct {
	ID          string
	Version     int64
	Name        string
	Description string
	Colour      string
	OrderNr     int
	Deleted     bool
}

// QualificationSourcingEvent is the closed set of qualification transitions.
type QualificationSourcingEvent interface {
	SourcingEvent
	isQualificationEvent()
}

const (
	EventTypeQualificationCreated        = "qualification.created"
	EventTypeQualificationDetailsChanged = "qualification.details_changed"
	EventTypeQualificationDeleted        = "qualification.deleted"
)

type QualificationCreated struct {
	EventMeta   `bson:",inline"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Colour      string `bson:"colour"`
	OrderNr     int    `bson:"order_nr"`
}

func (QualificationCreated) EventType() string     { return EventTypeQualificationCreated }
func (QualificationCreated) isQualificationEvent() {}

type QualificationDetailsChanged struct {
	EventMeta   `bson:",inline"`
	Name        Changeable[string] `bson:"name"`
	Description Changeable[string] `bson:"description"`
	Colour      Changeable[string] `bson:"colour"`
	OrderNr     Changeable[int]    `bson:"order_nr"`
}

func (QualificationDetailsChanged) EventType() string     { return EventTypeQualificationDetailsChanged }
func (QualificationDetailsChanged) isQualificationEvent() {}

type QualificationDeleted struct {
	EventMeta `bson:",inline"`
}

func (QualificationDeleted) EventType() string     { return EventTypeQualificationDeleted }
func (QualificationDeleted) isQualificationEvent() {}

// Apply folds a single event into the state. It is total over the event set
// and never mutates the receiver's maps or slices in place.
func (q Qualification) Apply(e QualificationSourcingEvent) Qualification {
	q.Version = e.Meta().Version
	switch ev := e.(type) {
	case QualificationCreated:
		q.ID = ev.AggregateID
		q.Name = ev.Name
		q.Description = ev.Description
		q.Colour = ev.Colour
		q.OrderNr = ev.OrderNr
	case QualificationDetailsChanged:
		q.Name = ev.Name.Apply(q.Name)
		q.Description = ev.Description.Apply(q.Description)
		q.Colour = ev.Colour.Apply(q.Colour)
		q.OrderNr = ev.OrderNr.Apply(q.OrderNr)
	case QualificationDeleted:
		q.Deleted = true
	}
	return q
}

// ReplayQualification left-folds an ordered event history into current state.
func ReplayQualification(events []QualificationSourcingEvent) Qualification {
	var q Qualification
	for _, e := range events {
		q = q.Apply(e)
	}
	return q
}

// NewQualification derives the creation event for a fresh qualification id.
func NewQualification(id string, actorID, correlationID string, now time.Time, name, description, colour string, orderNr int) QualificationCreated {
	return QualificationCreated{
		EventMeta:   creationMeta(id, actorID, correlationID, now),
		Name:        name,
		Description: description,
		Colour:      colour,
		OrderNr:     orderNr,
	}
}

// ChangeDetails derives a partial-update event; unchanged fields stay as is.
func (q Qualification) ChangeDetails(actorID, correlationID string, now time.Time, name, description, colour Changeable[string], orderNr Changeable[int]) QualificationDetailsChanged {
	return QualificationDetailsChanged{
		EventMeta:   newEventMeta(q.ID, q.Version, actorID, correlationID, now),
		Name:        name,
		Description: description,
		Colour:      colour,
		OrderNr:     orderNr,
	}
}

// Delete derives the soft-termination event.
func (q Qualification) Delete(actorID, correlationID string, now time.Time) QualificationDeleted {
	return QualificationDeleted{
		EventMeta: newEventMeta(q.ID, q.Version, actorID, correlationID, now),
	}
}
