package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

type deviceService struct {
	devices   ports.DeviceRepository
	tools     ports.ToolRepository
	publisher ports.DomainEventPublisher
	now       Clock
	newID     IDGenerator
	log       zerolog.Logger
}

// NewDeviceService returns a DeviceService implementation.
func NewDeviceService(
	devices ports.DeviceRepository,
	tools ports.ToolRepository,
	publisher ports.DomainEventPublisher,
	now Clock,
	newID IDGenerator,
	log zerolog.Logger,
) ports.DeviceService {
	return &deviceService{
		devices:   devices,
		tools:     tools,
		publisher: publisher,
		now:       now,
		newID:     newID,
		log:       log,
	}
}

// commit appends the event and, on success, publishes it.
func (s *deviceService) commit(ctx context.Context, operation string, event domain.DeviceSourcingEvent) error {
	if err := s.devices.Store(ctx, event); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			VersionConflictsTotal.WithLabelValues("device").Inc()
		}
		CommandsTotal.WithLabelValues("device", operation, "error").Inc()
		return err
	}
	s.publisher.Publish(ctx, event)
	CommandsTotal.WithLabelValues("device", operation, "success").Inc()

	meta := event.Meta()
	s.log.Info().
		Str("device_id", meta.AggregateID).
		Int64("version", meta.Version).
		Str("correlation_id", meta.CorrelationID).
		Str("operation", operation).
		Msg("device command committed")
	return nil
}

func (s *deviceService) AddDevice(ctx context.Context, actor domain.Actor, correlationID string, input ports.AddDeviceInput) (string, error) {
	if err := requireManage(actor, correlationID, ""); err != nil {
		return "", err
	}

	id := s.newID()
	event := domain.NewDevice(id, actor.ActorID(), correlationID, s.now(), input.Name, input.Background, input.BackupBackendURL)
	if err := s.commit(ctx, "add_device", event); err != nil {
		return "", err
	}
	return id, nil
}

func (s *deviceService) ChangeDeviceDetails(ctx context.Context, actor domain.Actor, correlationID, deviceID string, update ports.DeviceDetailsUpdate) error {
	if err := requireManage(actor, correlationID, deviceID); err != nil {
		return err
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	event := device.ChangeDetails(actor.ActorID(), correlationID, s.now(), update.Name, update.Background, update.BackupBackendURL)
	return s.commit(ctx, "change_device_details", event)
}

func (s *deviceService) AttachTool(ctx context.Context, actor domain.Actor, correlationID, deviceID string, pin int, toolID string) error {
	if err := requireManage(actor, correlationID, deviceID); err != nil {
		return err
	}

	// The referenced tool must exist; a deleted or unknown tool short-circuits.
	if _, err := s.tools.GetByID(ctx, toolID); err != nil {
		return err
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	event, derr := device.AttachTool(actor.ActorID(), correlationID, s.now(), pin, toolID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "attach_tool", event)
}

func (s *deviceService) DetachTool(ctx context.Context, actor domain.Actor, correlationID, deviceID string, pin int) error {
	if err := requireManage(actor, correlationID, deviceID); err != nil {
		return err
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	event, derr := device.DetachTool(actor.ActorID(), correlationID, s.now(), pin)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "detach_tool", event)
}

func (s *deviceService) DeleteDevice(ctx context.Context, actor domain.Actor, correlationID, deviceID string) error {
	if err := requireManage(actor, correlationID, deviceID); err != nil {
		return err
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	event := device.Delete(actor.ActorID(), correlationID, s.now())
	return s.commit(ctx, "delete_device", event)
}

func (s *deviceService) GetDevice(ctx context.Context, actor domain.Actor, correlationID, deviceID string) (*domain.Device, error) {
	if err := requireManage(actor, correlationID, deviceID); err != nil {
		return nil, err
	}
	return s.devices.GetByID(ctx, deviceID)
}

func (s *deviceService) GetAllDevices(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.Device, error) {
	if err := requireManage(actor, correlationID, ""); err != nil {
		return nil, err
	}
	return s.devices.GetAll(ctx)
}

// GetConfiguration assembles the view a controller polls for itself: its own
// attributes plus the details of every attached tool, ordered by pin.
func (s *deviceService) GetConfiguration(ctx context.Context, actor domain.Actor, correlationID, deviceID string) (*ports.DeviceConfiguration, error) {
	if err := requireActor(actor, correlationID); err != nil {
		return nil, err
	}
	if !domain.CanReadDeviceConfiguration(actor, deviceID) {
		return nil, domain.NewPermissionDenied(correlationID, "device configuration is readable by the device itself or an admin", map[string]string{
			"device_id": deviceID,
		})
	}

	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	cfg := &ports.DeviceConfiguration{
		DeviceID:         device.ID,
		Name:             device.Name,
		Background:       device.Background,
		BackupBackendURL: device.BackupBackendURL,
	}

	pins := make([]int, 0, len(device.AttachedTools))
	for pin := range device.AttachedTools {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	for _, pin := range pins {
		toolID := device.AttachedTools[pin]
		tool, err := s.tools.GetByID(ctx, toolID)
		if err != nil {
			// Attachment referencing a vanished tool: skip the pin rather
			// than failing the whole configuration read.
			s.log.Warn().
				Str("device_id", deviceID).
				Str("tool_id", toolID).
				Int("pin", pin).
				Str("correlation_id", correlationID).
				Msg("attached tool not resolvable, pin skipped")
			continue
		}
		cfg.AttachedTools = append(cfg.AttachedTools, ports.AttachedToolConfiguration{
			Pin:              pin,
			ToolID:           tool.ID,
			ToolName:         tool.Name,
			ToolType:         tool.Type,
			TimeLimitSeconds: tool.TimeLimitSeconds,
			Enabled:          tool.Enabled,
		})
	}
	return cfg, nil
}

// DetachToolOnToolDeleted is the cascade reaction to a committed ToolDeleted
// event: it detaches the deleted tool from one pin of one device, stamping the
// original actor id and correlation id onto the derived event.
func (s *deviceService) DetachToolOnToolDeleted(ctx context.Context, cause domain.ToolDeleted, deviceID string, pin int) error {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	event, derr := device.DetachTool(cause.ActorID, cause.CorrelationID, s.now(), pin)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "detach_tool_on_tool_deleted", event)
}
