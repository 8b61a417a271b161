package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// PasswordHasher abstracts the externally supplied password hashing function.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type userService struct {
	users          ports.UserRepository
	qualifications ports.QualificationRepository
	publisher      ports.DomainEventPublisher
	hasher         PasswordHasher
	now            Clock
	newID          IDGenerator
	log            zerolog.Logger
}

// NewUserService returns a UserService implementation.
func NewUserService(
	users ports.UserRepository,
	qualifications ports.QualificationRepository,
	publisher ports.DomainEventPublisher,
	hasher PasswordHasher,
	now Clock,
	newID IDGenerator,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		users:          users,
		qualifications: qualifications,
		publisher:      publisher,
		hasher:         hasher,
		now:            now,
		newID:          newID,
		log:            log,
	}
}

func (s *userService) commit(ctx context.Context, operation string, event domain.UserSourcingEvent) error {
	if err := s.users.Store(ctx, event); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			VersionConflictsTotal.WithLabelValues("user").Inc()
		}
		CommandsTotal.WithLabelValues("user", operation, "error").Inc()
		return err
	}
	s.publisher.Publish(ctx, event)
	CommandsTotal.WithLabelValues("user", operation, "success").Inc()

	meta := event.Meta()
	s.log.Info().
		Str("user_id", meta.AggregateID).
		Int64("version", meta.Version).
		Str("correlation_id", meta.CorrelationID).
		Str("operation", operation).
		Msg("user command committed")
	return nil
}

func (s *userService) AddUser(ctx context.Context, actor domain.Actor, correlationID string, input ports.AddUserInput) (string, error) {
	if err := requireManage(actor, correlationID, ""); err != nil {
		return "", err
	}

	id := s.newID()
	event := domain.NewUser(id, actor.ActorID(), correlationID, s.now(), input.FirstName, input.LastName, input.WikiName)
	if err := s.commit(ctx, "add_user", event); err != nil {
		return "", err
	}
	return id, nil
}

func (s *userService) ChangePersonalInformation(ctx context.Context, actor domain.Actor, correlationID, userID string, update ports.PersonalInformationUpdate) error {
	if err := requireManage(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event := user.ChangePersonalInformation(actor.ActorID(), correlationID, s.now(), update.FirstName, update.LastName, update.WikiName)
	return s.commit(ctx, "change_personal_information", event)
}

func (s *userService) ChangeLockState(ctx context.Context, actor domain.Actor, correlationID, userID string, update ports.LockStateUpdate) error {
	if err := requireManage(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event := user.ChangeLockState(actor.ActorID(), correlationID, s.now(), update.Locked, update.Notes)
	return s.commit(ctx, "change_lock_state", event)
}

func (s *userService) ChangeIsAdmin(ctx context.Context, actor domain.Actor, correlationID, userID string, isAdmin bool) error {
	if err := requireManage(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.ChangeIsAdmin(actor.ActorID(), correlationID, s.now(), isAdmin)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "change_is_admin", event)
}

func (s *userService) AddMemberQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error {
	if err := requireActor(actor, correlationID); err != nil {
		return err
	}
	if !domain.CanGrantMemberQualification(actor, qualificationID) {
		return domain.NewPermissionDenied(correlationID, "instructor qualification required", map[string]string{
			"user_id":          userID,
			"qualification_id": qualificationID,
		})
	}

	if _, err := s.qualifications.GetByID(ctx, qualificationID); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddMemberQualification(actor.ActorID(), correlationID, s.now(), qualificationID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_member_qualification", event)
}

func (s *userService) RemoveMemberQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error {
	if err := requireActor(actor, correlationID); err != nil {
		return err
	}
	if !domain.CanRevokeMemberQualification(actor, qualificationID) {
		return domain.NewPermissionDenied(correlationID, "instructor qualification required", map[string]string{
			"user_id":          userID,
			"qualification_id": qualificationID,
		})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.RemoveMemberQualification(actor.ActorID(), correlationID, s.now(), qualificationID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "remove_member_qualification", event)
}

func (s *userService) AddInstructorQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error {
	if err := requireManage(actor, correlationID, userID); err != nil {
		return err
	}

	if _, err := s.qualifications.GetByID(ctx, qualificationID); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddInstructorQualification(actor.ActorID(), correlationID, s.now(), qualificationID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_instructor_qualification", event)
}

func (s *userService) RemoveInstructorQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error {
	if err := requireManage(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.RemoveInstructorQualification(actor.ActorID(), correlationID, s.now(), qualificationID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "remove_instructor_qualification", event)
}

// requireIdentityPermission gates identity changes: admin, the user themself,
// or a device acting on behalf of that user.
func requireIdentityPermission(actor domain.Actor, correlationID, userID string) *domain.Error {
	if err := requireActor(actor, correlationID); err != nil {
		return err
	}
	if !domain.CanChangeIdentity(actor, userID) {
		return domain.NewPermissionDenied(correlationID, "identity changes require admin or the user themself", map[string]string{
			"user_id": userID,
		})
	}
	return nil
}

func (s *userService) AddUsernamePasswordIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, username, password string) error {
	if err := requireIdentityPermission(actor, correlationID, userID); err != nil {
		return err
	}

	// Usernames are unique across all users.
	existing, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != userID:
		return domain.NewInvariantViolation(correlationID, "username already in use", map[string]string{
			"username": username,
		})
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		// The check could not run; appending anyway could violate uniqueness.
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.NewStorageUnavailable(correlationID, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddIdentity(actor.ActorID(), correlationID, s.now(), domain.UsernamePasswordIdentity{
		Username:     username,
		PasswordHash: hash,
	})
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_username_password_identity", event)
}

func (s *userService) AddCardIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, cardID, cardSecret string) error {
	if err := requireIdentityPermission(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddIdentity(actor.ActorID(), correlationID, s.now(), domain.CardIdentity{
		CardID:     cardID,
		CardSecret: cardSecret,
	})
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_card_identity", event)
}

func (s *userService) AddPhoneNrIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, phoneNr string) error {
	if err := requireIdentityPermission(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddIdentity(actor.ActorID(), correlationID, s.now(), domain.PhoneNrIdentity{PhoneNr: phoneNr})
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_phone_nr_identity", event)
}

func (s *userService) AddPinIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, pin string) error {
	if err := requireIdentityPermission(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddIdentity(actor.ActorID(), correlationID, s.now(), domain.PinIdentity{Pin: pin})
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_pin_identity", event)
}

func (s *userService) AddWebauthnIdentity(ctx context.Context, actor domain.Actor, correlationID, userID string, credentialID []byte) error {
	if err := requireIdentityPermission(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.AddIdentity(actor.ActorID(), correlationID, s.now(), domain.WebauthnIdentity{CredentialID: credentialID})
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "add_webauthn_identity", event)
}

func (s *userService) RemoveIdentity(ctx context.Context, actor domain.Actor, correlationID, userID string, kind domain.IdentityKind) error {
	if err := requireIdentityPermission(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.RemoveIdentity(actor.ActorID(), correlationID, s.now(), kind)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "remove_identity", event)
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Actor, correlationID, userID string) error {
	if err := requireManage(actor, correlationID, userID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event := user.Delete(actor.ActorID(), correlationID, s.now())
	return s.commit(ctx, "delete_user", event)
}

func (s *userService) GetUser(ctx context.Context, actor domain.Actor, correlationID, userID string) (*domain.User, error) {
	if err := requireActor(actor, correlationID); err != nil {
		return nil, err
	}
	// Non-admins may only read themselves.
	if !domain.CanManage(actor) && actor.ActorID() != userID {
		return nil, domain.NewPermissionDenied(correlationID, "users are readable by admins or themselves", map[string]string{
			"user_id": userID,
		})
	}
	return s.users.GetByID(ctx, userID)
}

func (s *userService) GetAllUsers(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.User, error) {
	if err := requireManage(actor, correlationID, ""); err != nil {
		return nil, err
	}
	return s.users.GetAll(ctx)
}

// RemoveMemberQualificationOnQualificationDeleted is the cascade reaction to
// a committed QualificationDeleted event for one user holding it as a member
// qualification.
func (s *userService) RemoveMemberQualificationOnQualificationDeleted(ctx context.Context, cause domain.QualificationDeleted, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.RemoveMemberQualification(cause.ActorID, cause.CorrelationID, s.now(), cause.AggregateID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "remove_member_qualification_on_qualification_deleted", event)
}

// RemoveInstructorQualificationOnQualificationDeleted is the instructor-side
// counterpart of the QualificationDeleted cascade.
func (s *userService) RemoveInstructorQualificationOnQualificationDeleted(ctx context.Context, cause domain.QualificationDeleted, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	event, derr := user.RemoveInstructorQualification(cause.ActorID, cause.CorrelationID, s.now(), cause.AggregateID)
	if derr != nil {
		return derr
	}
	return s.commit(ctx, "remove_instructor_qualification_on_qualification_deleted", event)
}
