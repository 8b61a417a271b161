package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// The cascade handlers below react to events raised by other aggregate types
// and issue one follow-up command per affected aggregate instance. Instances
// are handled independently and concurrently; a failing instance is logged
// and counted, never propagated, so it cannot block the rest of the fan-out.
// Ordering across instances is deliberately unspecified.

// DeviceCascadeHandler detaches a deleted tool from every device pin holding it.
type DeviceCascadeHandler struct {
	devices ports.DeviceRepository
	service ports.DeviceService
	log     zerolog.Logger
}

func NewDeviceCascadeHandler(devices ports.DeviceRepository, service ports.DeviceService, log zerolog.Logger) *DeviceCascadeHandler {
	return &DeviceCascadeHandler{devices: devices, service: service, log: log}
}

func (h *DeviceCascadeHandler) EventTypes() []string {
	return []string{domain.EventTypeToolDeleted}
}

func (h *DeviceCascadeHandler) Handle(ctx context.Context, event domain.SourcingEvent) {
	cause, ok := event.(domain.ToolDeleted)
	if !ok {
		return
	}

	devices, err := h.devices.GetByAttachedTool(ctx, cause.AggregateID)
	if err != nil {
		h.log.Error().Err(err).
			Str("tool_id", cause.AggregateID).
			Str("correlation_id", cause.CorrelationID).
			Msg("device lookup for tool-deleted cascade failed")
		return
	}

	var wg sync.WaitGroup
	for _, device := range devices {
		pins := make([]int, 0, len(device.AttachedTools))
		for pin, toolID := range device.AttachedTools {
			if toolID == cause.AggregateID {
				pins = append(pins, pin)
			}
		}
		if len(pins) == 0 {
			continue
		}
		wg.Add(1)
		// Pins of one device are detached sequentially: each append bumps
		// the device version, so concurrent detaches on the same device
		// would race the optimistic check against each other.
		go func(deviceID string, pins []int) {
			defer wg.Done()
			for _, pin := range pins {
				if err := h.service.DetachToolOnToolDeleted(ctx, cause, deviceID, pin); err != nil {
					CascadeCommandsTotal.WithLabelValues(domain.EventTypeToolDeleted, "error").Inc()
					h.log.Warn().Err(err).
						Str("device_id", deviceID).
						Int("pin", pin).
						Str("tool_id", cause.AggregateID).
						Str("correlation_id", cause.CorrelationID).
						Msg("tool-deleted cascade target failed")
					continue
				}
				CascadeCommandsTotal.WithLabelValues(domain.EventTypeToolDeleted, "success").Inc()
			}
		}(device.ID, pins)
	}
	wg.Wait()
}

// UserCascadeHandler strips a deleted qualification from every user's member
// and instructor qualification sets.
type UserCascadeHandler struct {
	users   ports.UserRepository
	service ports.UserService
	log     zerolog.Logger
}

func NewUserCascadeHandler(users ports.UserRepository, service ports.UserService, log zerolog.Logger) *UserCascadeHandler {
	return &UserCascadeHandler{users: users, service: service, log: log}
}

func (h *UserCascadeHandler) EventTypes() []string {
	return []string{domain.EventTypeQualificationDeleted}
}

func (h *UserCascadeHandler) Handle(ctx context.Context, event domain.SourcingEvent) {
	cause, ok := event.(domain.QualificationDeleted)
	if !ok {
		return
	}

	users, err := h.users.GetByQualification(ctx, cause.AggregateID)
	if err != nil {
		h.log.Error().Err(err).
			Str("qualification_id", cause.AggregateID).
			Str("correlation_id", cause.CorrelationID).
			Msg("user lookup for qualification-deleted cascade failed")
		return
	}

	var wg sync.WaitGroup
	for _, user := range users {
		_, member := user.MemberQualifications[cause.AggregateID]
		_, instructor := user.InstructorQualifications[cause.AggregateID]

		wg.Add(1)
		go func(userID string, member, instructor bool) {
			defer wg.Done()
			// Member and instructor removals are separate commands so each
			// gets its own version check; the second one reloads fresh state.
			if member {
				h.removeOne(ctx, cause, userID, "member", h.service.RemoveMemberQualificationOnQualificationDeleted)
			}
			if instructor {
				h.removeOne(ctx, cause, userID, "instructor", h.service.RemoveInstructorQualificationOnQualificationDeleted)
			}
		}(user.ID, member, instructor)
	}
	wg.Wait()
}

func (h *UserCascadeHandler) removeOne(ctx context.Context, cause domain.QualificationDeleted, userID, side string, remove func(context.Context, domain.QualificationDeleted, string) error) {
	if err := remove(ctx, cause, userID); err != nil {
		CascadeCommandsTotal.WithLabelValues(domain.EventTypeQualificationDeleted, "error").Inc()
		h.log.Warn().Err(err).
			Str("user_id", userID).
			Str("side", side).
			Str("qualification_id", cause.AggregateID).
			Str("correlation_id", cause.CorrelationID).
			Msg("qualification-deleted cascade target failed")
		return
	}
	CascadeCommandsTotal.WithLabelValues(domain.EventTypeQualificationDeleted, "success").Inc()
}
