package domain

import "time"

// ToolType describes how a controller drives the tool's pin.
type ToolType string

const (
	// ToolTypeUnlock pulses the pin once to unlock the tool.
	ToolTypeUnlock ToolType = "unlock"
	// ToolTypeKeep keeps the pin high while the tool is in use.
	ToolTypeKeep ToolType = "keep"
)

// Tool is a machine or piece of equipment access to which is gated by
// qualifications. Devices attach tools to their numbered pins.
type Tool struct {
	ID                     string
	Version                int64
	Name                   string
	Type                   ToolType
	TimeLimitSeconds       int
	RequiredQualifications []string
	Enabled                bool
	Deleted                bool
}

// ToolSourcingEvent is the closed set of tool transitions.
type ToolSourcingEvent interface {
	SourcingEvent
	isToolEvent()
}

const (
	EventTypeToolCreated        = "tool.created"
	EventTypeToolDetailsChanged = "tool.details_changed"
	EventTypeToolDeleted        = "tool.deleted"
)

type ToolCreated struct {
	EventMeta              `bson:",inline"`
	Name                   string   `bson:"name"`
	Type                   ToolType `bson:"type"`
	TimeLimitSeconds       int      `bson:"time_limit_seconds"`
	RequiredQualifications []string `bson:"required_qualifications"`
	Enabled                bool     `bson:"enabled"`
}

func (ToolCreated) EventType() string { return EventTypeToolCreated }
func (ToolCreated) isToolEvent()      {}

type ToolDetailsChanged struct {
	EventMeta              `bson:",inline"`
	Name                   Changeable[string]   `bson:"name"`
	Type                   Changeable[ToolType] `bson:"type"`
	TimeLimitSeconds       Changeable[int]      `bson:"time_limit_seconds"`
	RequiredQualifications Changeable[[]string] `bson:"required_qualifications"`
	Enabled                Changeable[bool]     `bson:"enabled"`
}

func (ToolDetailsChanged) EventType() string { return EventTypeToolDetailsChanged }
func (ToolDetailsChanged) isToolEvent()      {}

type ToolDeleted struct {
	EventMeta `bson:",inline"`
}

func (ToolDeleted) EventType() string { return EventTypeToolDeleted }
func (ToolDeleted) isToolEvent()      {}

// Apply folds a single event into the state.
func (t Tool) Apply(e ToolSourcingEvent) Tool {
	t.Version = e.Meta().Version
	switch ev := e.(type) {
	case ToolCreated:
		t.ID = ev.AggregateID
		t.Name = ev.Name
		t.Type = ev.Type
		t.TimeLimitSeconds = ev.TimeLimitSeconds
		t.RequiredQualifications = append([]string(nil), ev.RequiredQualifications...)
		t.Enabled = ev.Enabled
	case ToolDetailsChanged:
		t.Name = ev.Name.Apply(t.Name)
		t.Type = ev.Type.Apply(t.Type)
		t.TimeLimitSeconds = ev.TimeLimitSeconds.Apply(t.TimeLimitSeconds)
		if ev.RequiredQualifications.Changed {
			t.RequiredQualifications = append([]string(nil), ev.RequiredQualifications.Value...)
		}
		t.Enabled = ev.Enabled.Apply(t.Enabled)
	case ToolDeleted:
		t.Deleted = true
	}
	return t
}

// ReplayTool left-folds an ordered event history into current state.
func ReplayTool(events []ToolSourcingEvent) Tool {
	var t Tool
	for _, e := range events {
		t = t.Apply(e)
	}
	return t
}

// NewTool derives the creation event for a fresh tool id.
func NewTool(id string, actorID, correlationID string, now time.Time, name string, toolType ToolType, timeLimitSeconds int, requiredQualifications []string, enabled bool) ToolCreated {
	return ToolCreated{
		EventMeta:              creationMeta(id, actorID, correlationID, now),
		Name:                   name,
		Type:                   toolType,
		TimeLimitSeconds:       timeLimitSeconds,
		RequiredQualifications: append([]string(nil), requiredQualifications...),
		Enabled:                enabled,
	}
}

// ChangeDetails derives a partial-update event; unchanged fields stay as is.
func (t Tool) ChangeDetails(actorID, correlationID string, now time.Time, name Changeable[string], toolType Changeable[ToolType], timeLimitSeconds Changeable[int], requiredQualifications Changeable[[]string], enabled Changeable[bool]) ToolDetailsChanged {
	return ToolDetailsChanged{
		EventMeta:              newEventMeta(t.ID, t.Version, actorID, correlationID, now),
		Name:                   name,
		Type:                   toolType,
		TimeLimitSeconds:       timeLimitSeconds,
		RequiredQualifications: requiredQualifications,
		Enabled:                enabled,
	}
}

// Delete derives the soft-termination event. Devices still holding the tool
// are detached by the cascade reaction to this event, not here.
func (t Tool) Delete(actorID, correlationID string, now time.Time) ToolDeleted {
	return ToolDeleted{
		EventMeta: newEventMeta(t.ID, t.Version, actorID, correlationID, now),
	}
}
