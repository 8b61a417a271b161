package handler

import (
	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// createdResponse returns the id of a freshly created aggregate.
type createdResponse struct {
	ID string `json:"id"`
}

// --- Request / Response types ---

type createQualificationRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Colour      string `json:"colour"      validate:"omitempty,hexcolor"`
	OrderNr     int    `json:"order_nr"    validate:"gte=0"`
}

// updateQualificationRequest is a partial update: absent fields stay as they are.
type updateQualificationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Colour      *string `json:"colour"   validate:"omitempty,hexcolor"`
	OrderNr     *int    `json:"order_nr" validate:"omitempty,gte=0"`
}

func (r updateQualificationRequest) toUpdate() ports.QualificationDetailsUpdate {
	return ports.QualificationDetailsUpdate{
		Name:        changeable(r.Name),
		Description: changeable(r.Description),
		Colour:      changeable(r.Colour),
		OrderNr:     changeable(r.OrderNr),
	}
}

type qualificationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Colour      string `json:"colour"`
	OrderNr     int    `json:"order_nr"`
}

func toQualificationResponse(q *domain.Qualification) qualificationResponse {
	return qualificationResponse{
		ID:          q.ID,
		Name:        q.Name,
		Description: q.Description,
		Colour:      q.Colour,
		OrderNr:     q.OrderNr,
	}
}

// changeable converts an optional JSON field into a partial-update value: a
// nil pointer leaves the attribute untouched.
func changeable[T any](p *T) domain.Changeable[T] {
	if p == nil {
		return domain.LeaveAsIs[T]()
	}
	return domain.ChangeTo(*p)
}
