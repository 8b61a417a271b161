package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

type toolService struct {
	tools          ports.ToolRepository
	qualifications ports.QualificationRepository
	publisher      ports.DomainEventPublisher
	now            Clock
	newID          IDGenerator
	log            zerolog.Logger
}

// NewToolService returns a ToolService implementation.
func NewToolService(
	tools ports.ToolRepository,
	qualifications ports.QualificationRepository,
	publisher ports.DomainEventPublisher,
	now Clock,
	newID IDGenerator,
	log zerolog.Logger,
) ports.ToolService {
	return &toolService{
		tools:          tools,
		qualifications: qualifications,
		publisher:      publisher,
		now:            now,
		newID:          newID,
		log:            log,
	}
}

func (s *toolService) commit(ctx context.Context, operation string, event domain.ToolSourcingEvent) error {
	if err := s.tools.Store(ctx, event); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			VersionConflictsTotal.WithLabelValues("tool").Inc()
		}
		CommandsTotal.WithLabelValues("tool", operation, "error").Inc()
		return err
	}
	s.publisher.Publish(ctx, event)
	CommandsTotal.WithLabelValues("tool", operation, "success").Inc()

	meta := event.Meta()
	s.log.Info().
		Str("tool_id", meta.AggregateID).
		Int64("version", meta.Version).
		Str("correlation_id", meta.CorrelationID).
		Str("operation", operation).
		Msg("tool command committed")
	return nil
}

// requireQualificationsExist verifies every referenced qualification id.
func (s *toolService) requireQualificationsExist(ctx context.Context, qualificationIDs []string) error {
	for _, id := range qualificationIDs {
		if _, err := s.qualifications.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *toolService) AddTool(ctx context.Context, actor domain.Actor, correlationID string, input ports.AddToolInput) (string, error) {
	if err := requireManage(actor, correlationID, ""); err != nil {
		return "", err
	}
	if err := s.requireQualificationsExist(ctx, input.RequiredQualifications); err != nil {
		return "", err
	}

	id := s.newID()
	event := domain.NewTool(id, actor.ActorID(), correlationID, s.now(), input.Name, input.Type, input.TimeLimitSeconds, input.RequiredQualifications, input.Enabled)
	if err := s.commit(ctx, "add_tool", event); err != nil {
		return "", err
	}
	return id, nil
}

func (s *toolService) ChangeToolDetails(ctx context.Context, actor domain.Actor, correlationID, toolID string, update ports.ToolDetailsUpdate) error {
	if err := requireManage(actor, correlationID, toolID); err != nil {
		return err
	}
	if update.RequiredQualifications.Changed {
		if err := s.requireQualificationsExist(ctx, update.RequiredQualifications.Value); err != nil {
			return err
		}
	}

	tool, err := s.tools.GetByID(ctx, toolID)
	if err != nil {
		return err
	}

	event := tool.ChangeDetails(actor.ActorID(), correlationID, s.now(), update.Name, update.Type, update.TimeLimitSeconds, update.RequiredQualifications, update.Enabled)
	return s.commit(ctx, "change_tool_details", event)
}

func (s *toolService) DeleteTool(ctx context.Context, actor domain.Actor, correlationID, toolID string) error {
	if err := requireManage(actor, correlationID, toolID); err != nil {
		return err
	}

	tool, err := s.tools.GetByID(ctx, toolID)
	if err != nil {
		return err
	}

	event := tool.Delete(actor.ActorID(), correlationID, s.now())
	return s.commit(ctx, "delete_tool", event)
}

func (s *toolService) GetTool(ctx context.Context, actor domain.Actor, correlationID, toolID string) (*domain.Tool, error) {
	if err := requireActor(actor, correlationID); err != nil {
		return nil, err
	}
	return s.tools.GetByID(ctx, toolID)
}

func (s *toolService) GetAllTools(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.Tool, error) {
	if err := requireActor(actor, correlationID); err != nil {
		return nil, err
	}
	return s.tools.GetAll(ctx)
}
