package handler

import (
	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// --- Request / Response types ---

type createToolRequest struct {
	Name                   string   `json:"name"                     validate:"required"`
	Type                   string   `json:"type"                     validate:"required,oneof=unlock keep"`
	TimeLimitSeconds       int      `json:"time_limit_seconds"       validate:"gte=0"`
	RequiredQualifications []string `json:"required_qualifications"`
	Enabled                bool     `json:"enabled"`
}

// updateToolRequest is a partial update: absent fields stay as they are.
type updateToolRequest struct {
	Name                   *string   `json:"name"`
	Type                   *string   `json:"type"               validate:"omitempty,oneof=unlock keep"`
	TimeLimitSeconds       *int      `json:"time_limit_seconds" validate:"omitempty,gte=0"`
	RequiredQualifications *[]string `json:"required_qualifications"`
	Enabled                *bool     `json:"enabled"`
}

func (r updateToolRequest) toUpdate() ports.ToolDetailsUpdate {
	update := ports.ToolDetailsUpdate{
		Name:                   changeable(r.Name),
		TimeLimitSeconds:       changeable(r.TimeLimitSeconds),
		RequiredQualifications: changeable(r.RequiredQualifications),
		Enabled:                changeable(r.Enabled),
	}
	if r.Type != nil {
		update.Type = domain.ChangeTo(domain.ToolType(*r.Type))
	}
	return update
}

type toolResponse struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Type                   string   `json:"type"`
	TimeLimitSeconds       int      `json:"time_limit_seconds"`
	RequiredQualifications []string `json:"required_qualifications"`
	Enabled                bool     `json:"enabled"`
}

func toToolResponse(t *domain.Tool) toolResponse {
	quals := t.RequiredQualifications
	if quals == nil {
		quals = []string{}
	}
	return toolResponse{
		ID:                     t.ID,
		Name:                   t.Name,
		Type:                   string(t.Type),
		TimeLimitSeconds:       t.TimeLimitSeconds,
		RequiredQualifications: quals,
		Enabled:                t.Enabled,
	}
}
