package handler

import (
	"sort"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// --- Request / Response types ---

type createDeviceRequest struct {
	Name             string `json:"name"               validate:"required"`
	Background       string `json:"background"`
	BackupBackendURL string `json:"backup_backend_url" validate:"omitempty,url"`
}

// updateDeviceRequest is a partial update: absent fields stay as they are.
type updateDeviceRequest struct {
	Name             *string `json:"name"`
	Background       *string `json:"background"`
	BackupBackendURL *string `json:"backup_backend_url" validate:"omitempty,url"`
}

func (r updateDeviceRequest) toUpdate() ports.DeviceDetailsUpdate {
	return ports.DeviceDetailsUpdate{
		Name:             changeable(r.Name),
		Background:       changeable(r.Background),
		BackupBackendURL: changeable(r.BackupBackendURL),
	}
}

type attachToolRequest struct {
	ToolID string `json:"tool_id" validate:"required"`
}

type attachedToolResponse struct {
	Pin    int    `json:"pin"`
	ToolID string `json:"tool_id"`
}

type deviceResponse struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Background       string                 `json:"background"`
	BackupBackendURL string                 `json:"backup_backend_url"`
	AttachedTools    []attachedToolResponse `json:"attached_tools"`
}

func toDeviceResponse(d *domain.Device) deviceResponse {
	attached := make([]attachedToolResponse, 0, len(d.AttachedTools))
	for pin, toolID := range d.AttachedTools {
		attached = append(attached, attachedToolResponse{Pin: pin, ToolID: toolID})
	}
	sort.Slice(attached, func(i, j int) bool { return attached[i].Pin < attached[j].Pin })

	return deviceResponse{
		ID:               d.ID,
		Name:             d.Name,
		Background:       d.Background,
		BackupBackendURL: d.BackupBackendURL,
		AttachedTools:    attached,
	}
}

type configuredToolResponse struct {
	Pin              int    `json:"pin"`
	ToolID           string `json:"tool_id"`
	ToolName         string `json:"tool_name"`
	ToolType         string `json:"tool_type"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	Enabled          bool   `json:"enabled"`
}

// deviceConfigurationResponse is the view a controller polls to learn which
// tools hang off which pins.
type deviceConfigurationResponse struct {
	DeviceID         string                   `json:"device_id"`
	Name             string                   `json:"name"`
	Background       string                   `json:"background"`
	BackupBackendURL string                   `json:"backup_backend_url"`
	AttachedTools    []configuredToolResponse `json:"attached_tools"`
}

func toDeviceConfigurationResponse(cfg *ports.DeviceConfiguration) deviceConfigurationResponse {
	tools := make([]configuredToolResponse, 0, len(cfg.AttachedTools))
	for _, t := range cfg.AttachedTools {
		tools = append(tools, configuredToolResponse{
			Pin:              t.Pin,
			ToolID:           t.ToolID,
			ToolName:         t.ToolName,
			ToolType:         string(t.ToolType),
			TimeLimitSeconds: t.TimeLimitSeconds,
			Enabled:          t.Enabled,
		})
	}
	return deviceConfigurationResponse{
		DeviceID:         cfg.DeviceID,
		Name:             cfg.Name,
		Background:       cfg.Background,
		BackupBackendURL: cfg.BackupBackendURL,
		AttachedTools:    tools,
	}
}
