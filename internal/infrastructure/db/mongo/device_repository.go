package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/makerhive/access-system/internal/core/domain"
)

const collectionDeviceEvents = "device_events"

// DeviceRepository replays and appends device sourcing events.
type DeviceRepository struct {
	store eventStore[domain.DeviceSourcingEvent]
}

func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{store: eventStore[domain.DeviceSourcingEvent]{
		col:    db.Collection(collectionDeviceEvents),
		decode: decodeDeviceEvent,
	}}
}

func decodeDeviceEvent(eventType string, payload bson.Raw) (domain.DeviceSourcingEvent, error) {
	switch eventType {
	case domain.EventTypeDeviceCreated:
		var e domain.DeviceCreated
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeDeviceDetailsChanged:
		var e domain.DeviceDetailsChanged
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeToolAttached:
		var e domain.ToolAttached
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeToolDetached:
		var e domain.ToolDetached
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeDeviceDeleted:
		var e domain.DeviceDeleted
		return e, bson.Unmarshal(payload, &e)
	}
	return nil, fmt.Errorf("unknown device event type %q", eventType)
}

func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "device not found", map[string]string{"device_id": id})
	}

	device := domain.ReplayDevice(events)
	if device.Deleted {
		return nil, domain.NewNotFound("", "device is deleted", map[string]string{"device_id": id})
	}
	return &device, nil
}

func (r *DeviceRepository) GetAll(ctx context.Context) ([]*domain.Device, error) {
	byID, err := r.store.allEvents(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]*domain.Device, 0, len(byID))
	for _, events := range byID {
		device := domain.ReplayDevice(events)
		if device.Deleted {
			continue
		}
		devices = append(devices, &device)
	}
	return devices, nil
}

func (r *DeviceRepository) GetSourcingEventsByID(ctx context.Context, id string) ([]domain.DeviceSourcingEvent, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "device not found", map[string]string{"device_id": id})
	}
	return events, nil
}

func (r *DeviceRepository) Store(ctx context.Context, event domain.DeviceSourcingEvent) error {
	return r.store.append(ctx, event)
}

// GetByAttachedTool lists devices currently holding the tool at some pin.
// Replays current state rather than maintaining a separate index; fan-out
// reads tolerate eventual visibility.
func (r *DeviceRepository) GetByAttachedTool(ctx context.Context, toolID string) ([]*domain.Device, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Device
	for _, device := range all {
		for _, attached := range device.AttachedTools {
			if attached == toolID {
				matched = append(matched, device)
				break
			}
		}
	}
	return matched, nil
}

// EnsureIndexes creates the (aggregate_id, version) uniqueness constraint.
func (r *DeviceRepository) EnsureIndexes(ctx context.Context) error {
	return r.store.ensureIndexes(ctx)
}
