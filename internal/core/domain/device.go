package domain

import (
	"strconv"
	"time"
)

// Device is a controller mounted in the workshop. Each of its numbered pins
// can hold at most one attached tool; attachments reference tools by id only.
type Device struct {
	ID               string
	Version          int64
	Name             string
	Background       string
	BackupBackendURL string
	// AttachedTools maps pin number to the attached tool id.
	AttachedTools map[int]string
	Deleted       bool
}

// DeviceSourcingEvent is the closed set of device transitions.
type DeviceSourcingEvent interface {
	SourcingEvent
	isDeviceEvent()
}

const (
	EventTypeDeviceCreated        = "device.created"
	EventTypeDeviceDetailsChanged = "device.details_changed"
	EventTypeToolAttached         = "device.tool_attached"
	EventTypeToolDetached         = "device.tool_detached"
	EventTypeDeviceDeleted        = "device.deleted"
)

type DeviceCreated struct {
	EventMeta        `bson:",inline"`
	Name             string `bson:"name"`
	Background       string `bson:"background"`
	BackupBackendURL string `bson:"backup_backend_url"`
}

func (DeviceCreated) EventType() string { return EventTypeDeviceCreated }
func (DeviceCreated) isDeviceEvent()    {}

type DeviceDetailsChanged struct {
	EventMeta        `bson:",inline"`
	Name             Changeable[string] `bson:"name"`
	Background       Changeable[string] `bson:"background"`
	BackupBackendURL Changeable[string] `bson:"backup_backend_url"`
}

func (DeviceDetailsChanged) EventType() string { return EventTypeDeviceDetailsChanged }
func (DeviceDetailsChanged) isDeviceEvent()    {}

type ToolAttached struct {
	EventMeta `bson:",inline"`
	Pin       int    `bson:"pin"`
	ToolID    string `bson:"tool_id"`
}

func (ToolAttached) EventType() string { return EventTypeToolAttached }
func (ToolAttached) isDeviceEvent()    {}

type ToolDetached struct {
	EventMeta `bson:",inline"`
	Pin       int `bson:"pin"`
}

func (ToolDetached) EventType() string { return EventTypeToolDetached }
func (ToolDetached) isDeviceEvent()    {}

type DeviceDeleted struct {
	EventMeta `bson:",inline"`
}

func (DeviceDeleted) EventType() string { return EventTypeDeviceDeleted }
func (DeviceDeleted) isDeviceEvent()    {}

// Apply folds a single event into the state. The attachment map is copied
// before modification so previous states stay observable.
func (d Device) Apply(e DeviceSourcingEvent) Device {
	d.Version = e.Meta().Version
	switch ev := e.(type) {
	case DeviceCreated:
		d.ID = ev.AggregateID
		d.Name = ev.Name
		d.Background = ev.Background
		d.BackupBackendURL = ev.BackupBackendURL
		d.AttachedTools = map[int]string{}
	case DeviceDetailsChanged:
		d.Name = ev.Name.Apply(d.Name)
		d.Background = ev.Background.Apply(d.Background)
		d.BackupBackendURL = ev.BackupBackendURL.Apply(d.BackupBackendURL)
	case ToolAttached:
		attached := make(map[int]string, len(d.AttachedTools)+1)
		for pin, toolID := range d.AttachedTools {
			attached[pin] = toolID
		}
		attached[ev.Pin] = ev.ToolID
		d.AttachedTools = attached
	case ToolDetached:
		attached := make(map[int]string, len(d.AttachedTools))
		for pin, toolID := range d.AttachedTools {
			if pin != ev.Pin {
				attached[pin] = toolID
			}
		}
		d.AttachedTools = attached
	case DeviceDeleted:
		d.Deleted = true
	}
	return d
}

// ReplayDevice left-folds an ordered event history into current state.
func ReplayDevice(events []DeviceSourcingEvent) Device {
	var d Device
	for _, e := range events {
		d = d.Apply(e)
	}
	return d
}

// NewDevice derives the creation event for a fresh device id.
func NewDevice(id string, actorID, correlationID string, now time.Time, name, background, backupBackendURL string) DeviceCreated {
	return DeviceCreated{
		EventMeta:        creationMeta(id, actorID, correlationID, now),
		Name:             name,
		Background:       background,
		BackupBackendURL: backupBackendURL,
	}
}

// ChangeDetails derives a partial-update event; unchanged fields stay as is.
func (d Device) ChangeDetails(actorID, correlationID string, now time.Time, name, background, backupBackendURL Changeable[string]) DeviceDetailsChanged {
	return DeviceDetailsChanged{
		EventMeta:        newEventMeta(d.ID, d.Version, actorID, correlationID, now),
		Name:             name,
		Background:       background,
		BackupBackendURL: backupBackendURL,
	}
}

// AttachTool derives an attachment event, failing when the pin is occupied.
func (d Device) AttachTool(actorID, correlationID string, now time.Time, pin int, toolID string) (DeviceSourcingEvent, *Error) {
	if occupied, ok := d.AttachedTools[pin]; ok {
		return nil, NewInvariantViolation(correlationID, "pin is already occupied", map[string]string{
			"device_id": d.ID,
			"pin":       strconv.Itoa(pin),
			"tool_id":   occupied,
		})
	}
	return ToolAttached{
		EventMeta: newEventMeta(d.ID, d.Version, actorID, correlationID, now),
		Pin:       pin,
		ToolID:    toolID,
	}, nil
}

// DetachTool derives a detachment event, failing when nothing is attached.
func (d Device) DetachTool(actorID, correlationID string, now time.Time, pin int) (DeviceSourcingEvent, *Error) {
	if _, ok := d.AttachedTools[pin]; !ok {
		return nil, NewInvariantViolation(correlationID, "no tool attached at pin", map[string]string{
			"device_id": d.ID,
			"pin":       strconv.Itoa(pin),
		})
	}
	return ToolDetached{
		EventMeta: newEventMeta(d.ID, d.Version, actorID, correlationID, now),
		Pin:       pin,
	}, nil
}

// Delete derives the soft-termination event.
func (d Device) Delete(actorID, correlationID string, now time.Time) DeviceDeleted {
	return DeviceDeleted{
		EventMeta: newEventMeta(d.ID, d.Version, actorID, correlationID, now),
	}
}
