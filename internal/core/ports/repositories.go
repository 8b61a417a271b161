package ports

import (
	"context"

	"github.com/makerhive/access-system/internal/core/domain"
)

// The repositories replay sourcing events into aggregate state and append new
// events under optimistic concurrency control: Store succeeds only when the
// event's target version is exactly one past the last persisted version for
// its aggregate id (or 1 with no prior events). A losing racer receives a
// VersionConflict error; the caller decides whether to reload and retry.
//
// GetByID returns NotFound both for never-created ids and for aggregates whose
// history ends in a Deleted event. Read methods observe a consistent snapshot
// but not necessarily the latest write.

// UserRepository persists and replays user sourcing events.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	GetSourcingEventsByID(ctx context.Context, id string) ([]domain.UserSourcingEvent, error)
	Store(ctx context.Context, event domain.UserSourcingEvent) error

	// GetByUsername resolves the user holding a username/password identity
	// with the given username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByQualification lists users holding the qualification as a member
	// or instructor qualification. Read-side lookup for cascade fan-out.
	GetByQualification(ctx context.Context, qualificationID string) ([]*domain.User, error)
}

// DeviceRepository persists and replays device sourcing events.
type DeviceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	GetAll(ctx context.Context) ([]*domain.Device, error)
	GetSourcingEventsByID(ctx context.Context, id string) ([]domain.DeviceSourcingEvent, error)
	Store(ctx context.Context, event domain.DeviceSourcingEvent) error

	// GetByAttachedTool lists devices currently holding the tool at some pin.
	// Read-side lookup for cascade fan-out.
	GetByAttachedTool(ctx context.Context, toolID string) ([]*domain.Device, error)
}

// ToolRepository persists and replays tool sourcing events.
type ToolRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tool, error)
	GetAll(ctx context.Context) ([]*domain.Tool, error)
	GetSourcingEventsByID(ctx context.Context, id string) ([]domain.ToolSourcingEvent, error)
	Store(ctx context.Context, event domain.ToolSourcingEvent) error
}

// QualificationRepository persists and replays qualification sourcing events.
type QualificationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Qualification, error)
	GetAll(ctx context.Context) ([]*domain.Qualification, error)
	GetSourcingEventsByID(ctx context.Context, id string) ([]domain.QualificationSourcingEvent, error)
	Store(ctx context.Context, event domain.QualificationSourcingEvent) error
}
