package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

type qualificationService struct {
	qualifications ports.QualificationRepository
	publisher      ports.DomainEventPublisher
	now            Clock
	newID          IDGenerator
	log            zerolog.Logger
}

// NewQualificationService returns a QualificationService implementation.
func NewQualificationService(
	qualifications ports.QualificationRepository,
	publisher ports.DomainEventPublisher,
	now Clock,
	newID IDGenerator,
	log zerolog.Logger,
) ports.QualificationService {
	return &qualificationService{
		qualifications: qualifications,
		publisher:      publisher,
		now:            now,
		newID:          newID,
		log:            log,
	}
}

func (s *qualificationService) commit(ctx context.Context, operation string, event domain.QualificationSourcingEvent) error {
	if err := s.qualifications.Store(ctx, event); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			VersionConflictsTotal.WithLabelValues("qualification").Inc()
		}
		CommandsTotal.WithLabelValues("qualification", operation, "error").Inc()
		return err
	}
	s.publisher.Publish(ctx, event)
	CommandsTotal.WithLabelValues("qualification", operation, "success").Inc()

	meta := event.Meta()
	s.log.Info().
		Str("qualification_id", meta.AggregateID).
		Int64("version", meta.Version).
		Str("correlation_id", meta.CorrelationID).
		Str("operation", operation).
		Msg("qualification command committed")
	return nil
}

func (s *qualificationService) AddQualification(ctx context.Context, actor domain.Actor, correlationID string, input ports.AddQualificationInput) (string, error) {
	if err := requireManage(actor, correlationID, ""); err != nil {
		return "", err
	}

	id := s.newID()
	event := domain.NewQualification(id, actor.ActorID(), correlationID, s.now(), input.Name, input.Description, input.Colour, input.OrderNr)
	if err := s.commit(ctx, "add_qualification", event); err != nil {
		return "", err
	}
	return id, nil
}

func (s *qualificationService) ChangeQualificationDetails(ctx context.Context, actor domain.Actor, correlationID, qualificationID string, update ports.QualificationDetailsUpdate) error {
	if err := requireManage(actor, correlationID, qualificationID); err != nil {
		return err
	}

	qualification, err := s.qualifications.GetByID(ctx, qualificationID)
	if err != nil {
		return err
	}

	event := qualification.ChangeDetails(actor.ActorID(), correlationID, s.now(), update.Name, update.Description, update.Colour, update.OrderNr)
	return s.commit(ctx, "change_qualification_details", event)
}

func (s *qualificationService) DeleteQualification(ctx context.Context, actor domain.Actor, correlationID, qualificationID string) error {
	if err := requireManage(actor, correlationID, qualificationID); err != nil {
		return err
	}

	qualification, err := s.qualifications.GetByID(ctx, qualificationID)
	if err != nil {
		return err
	}

	event := qualification.Delete(actor.ActorID(), correlationID, s.now())
	return s.commit(ctx, "delete_qualification", event)
}

func (s *qualificationService) GetQualification(ctx context.Context, actor domain.Actor, correlationID, qualificationID string) (*domain.Qualification, error) {
	if err := requireActor(actor, correlationID); err != nil {
		return nil, err
	}
	return s.qualifications.GetByID(ctx, qualificationID)
}

func (s *qualificationService) GetAllQualifications(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.Qualification, error) {
	if err := requireActor(actor, correlationID); err != nil {
		return nil, err
	}
	return s.qualifications.GetAll(ctx)
}
