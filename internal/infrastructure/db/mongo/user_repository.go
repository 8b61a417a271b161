package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/makerhive/access-system/internal/core/domain"
)

const collectionUserEvents = "user_events"

// UserRepository replays and appends user sourcing events.
type UserRepository struct {
	store eventStore[domain.UserSourcingEvent]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{store: eventStore[domain.UserSourcingEvent]{
		col:    db.Collection(collectionUserEvents),
		decode: decodeUserEvent,
	}}
}

func decodeUserEvent(eventType string, payload bson.Raw) (domain.UserSourcingEvent, error) {
	switch eventType {
	case domain.EventTypeUserCreated:
		var e domain.UserCreated
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeUserPersonalInformationChanged:
		var e domain.UserPersonalInformationChanged
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeUserLockStateChanged:
		var e domain.UserLockStateChanged
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeUserIsAdminChanged:
		var e domain.UserIsAdminChanged
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeMemberQualificationAdded:
		var e domain.MemberQualificationAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeMemberQualificationRemoved:
		var e domain.MemberQualificationRemoved
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeInstructorQualificationAdded:
		var e domain.InstructorQualificationAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeInstructorQualificationRemoved:
		var e domain.InstructorQualificationRemoved
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeUsernamePasswordIdentityAdded:
		var e domain.UsernamePasswordIdentityAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeCardIdentityAdded:
		var e domain.CardIdentityAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypePhoneNrIdentityAdded:
		var e domain.PhoneNrIdentityAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypePinIdentityAdded:
		var e domain.PinIdentityAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeWebauthnIdentityAdded:
		var e domain.WebauthnIdentityAdded
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeUserIdentityRemoved:
		var e domain.UserIdentityRemoved
		return e, bson.Unmarshal(payload, &e)
	case domain.EventTypeUserDeleted:
		var e domain.UserDeleted
		return e, bson.Unmarshal(payload, &e)
	}
	return nil, fmt.Errorf("unknown user event type %q", eventType)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "user not found", map[string]string{"user_id": id})
	}

	user := domain.ReplayUser(events)
	if user.Deleted {
		return nil, domain.NewNotFound("", "user is deleted", map[string]string{"user_id": id})
	}
	return &user, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	byID, err := r.store.allEvents(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(byID))
	for _, events := range byID {
		user := domain.ReplayUser(events)
		if user.Deleted {
			continue
		}
		users = append(users, &user)
	}
	return users, nil
}

func (r *UserRepository) GetSourcingEventsByID(ctx context.Context, id string) ([]domain.UserSourcingEvent, error) {
	events, err := r.store.eventsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.NewNotFound("", "user not found", map[string]string{"user_id": id})
	}
	return events, nil
}

func (r *UserRepository) Store(ctx context.Context, event domain.UserSourcingEvent) error {
	return r.store.append(ctx, event)
}

// GetByUsername resolves the user holding a username/password identity with
// the given username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, user := range all {
		identity, ok := user.Identities[domain.IdentityKindUsernamePassword].(domain.UsernamePasswordIdentity)
		if ok && identity.Username == username {
			return user, nil
		}
	}
	return nil, domain.NewNotFound("", "no user with this username", map[string]string{"username": username})
}

// GetByQualification lists users holding the qualification as a member or
// instructor qualification.
func (r *UserRepository) GetByQualification(ctx context.Context, qualificationID string) ([]*domain.User, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.User
	for _, user := range all {
		_, member := user.MemberQualifications[qualificationID]
		_, instructor := user.InstructorQualifications[qualificationID]
		if member || instructor {
			matched = append(matched, user)
		}
	}
	return matched, nil
}

// EnsureIndexes creates the (aggregate_id, version) uniqueness constraint.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	return r.store.ensureIndexes(ctx)
}
