package domain

import "time"

// IdentityKind names the credential kinds a user can authenticate with.
// A user holds at most one identity per kind.
type IdentityKind string

const (
	IdentityKindUsernamePassword IdentityKind = "username_password"
	IdentityKindCard             IdentityKind = "card"
	IdentityKindPhoneNr          IdentityKind = "phone_nr"
	IdentityKindPin              IdentityKind = "pin"
	IdentityKindWebauthn         IdentityKind = "webauthn"
)

// UserIdentity is one credential of a user. The concrete types below are the
// only implementations.
type UserIdentity interface {
	Kind() IdentityKind
}

type UsernamePasswordIdentity struct {
	Username     string
	PasswordHash string
}

func (UsernamePasswordIdentity) Kind() IdentityKind { return IdentityKindUsernamePassword }

type CardIdentity struct {
	CardID     string
	CardSecret string
}

func (CardIdentity) Kind() IdentityKind { return IdentityKindCard }

type PhoneNrIdentity struct {
	PhoneNr string
}

func (PhoneNrIdentity) Kind() IdentityKind { return IdentityKindPhoneNr }

type PinIdentity struct {
	Pin string
}

func (PinIdentity) Kind() IdentityKind { return IdentityKindPin }

type WebauthnIdentity struct {
	CredentialID []byte
}

func (WebauthnIdentity) Kind() IdentityKind { return IdentityKindWebauthn }

// User is a workshop member, instructor or admin. Qualifications and
// instructor qualifications are referenced by id only.
type User struct {
	ID                       string
	Version                  int64
	FirstName                string
	LastName                 string
	WikiName                 string
	Locked                   bool
	Notes                    string
	IsAdmin                  bool
	MemberQualifications     map[string]struct{}
	InstructorQualifications map[string]struct{}
	Identities               map[IdentityKind]UserIdentity
	Deleted                  bool
}

// Actor derives the permission-checking actor for this user. Admin wins over
// instructor, instructor (any instructor qualification) over member.
func (u User) Actor() Actor {
	switch {
	case u.IsAdmin:
		return Admin{UserID: u.ID}
	case len(u.InstructorQualifications) > 0:
		return Instructor{
			UserID:                   u.ID,
			MemberQualifications:     cloneSet(u.MemberQualifications),
			InstructorQualifications: cloneSet(u.InstructorQualifications),
		}
	default:
		return Member{UserID: u.ID, MemberQualifications: cloneSet(u.MemberQualifications)}
	}
}

// UserSourcingEvent is the closed set of user transitions.
type UserSourcingEvent interface {
	SourcingEvent
	isUserEvent()
}

const (
	EventTypeUserCreated                    = "user.created"
	EventTypeUserPersonalInformationChanged = "user.personal_information_changed"
	EventTypeUserLockStateChanged           = "user.lock_state_changed"
	EventTypeUserIsAdminChanged             = "user.is_admin_changed"
	EventTypeMemberQualificationAdded       = "user.member_qualification_added"
	EventTypeMemberQualificationRemoved     = "user.member_qualification_removed"
	EventTypeInstructorQualificationAdded   = "user.instructor_qualification_added"
	EventTypeInstructorQualificationRemoved = "user.instructor_qualification_removed"
	EventTypeUsernamePasswordIdentityAdded  = "user.username_password_identity_added"
	EventTypeCardIdentityAdded              = "user.card_identity_added"
	EventTypePhoneNrIdentityAdded           = "user.phone_nr_identity_added"
	EventTypePinIdentityAdded               = "user.pin_identity_added"
	EventTypeWebauthnIdentityAdded          = "user.webauthn_identity_added"
	EventTypeUserIdentityRemoved            = "user.identity_removed"
	EventTypeUserDeleted                    = "user.deleted"
)

type UserCreated struct {
	EventMeta `bson:",inline"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	WikiName  string `bson:"wiki_name"`
}

func (UserCreated) EventType() string { return EventTypeUserCreated }
func (UserCreated) isUserEvent()      {}

type UserPersonalInformationChanged struct {
	EventMeta `bson:",inline"`
	FirstName Changeable[string] `bson:"first_name"`
	LastName  Changeable[string] `bson:"last_name"`
	WikiName  Changeable[string] `bson:"wiki_name"`
}

func (UserPersonalInformationChanged) EventType() string {
	return EventTypeUserPersonalInformationChanged
}
func (UserPersonalInformationChanged) isUserEvent() {}

type UserLockStateChanged struct {
	EventMeta `bson:",inline"`
	Locked    Changeable[bool]   `bson:"locked"`
	Notes     Changeable[string] `bson:"notes"`
}

func (UserLockStateChanged) EventType() string { return EventTypeUserLockStateChanged }
func (UserLockStateChanged) isUserEvent()      {}

type UserIsAdminChanged struct {
	EventMeta `bson:",inline"`
	IsAdmin   bool `bson:"is_admin"`
}

func (UserIsAdminChanged) EventType() string { return EventTypeUserIsAdminChanged }
func (UserIsAdminChanged) isUserEvent()      {}

type MemberQualificationAdded struct {
	EventMeta       `bson:",inline"`
	QualificationID string `bson:"qualification_id"`
}

func (MemberQualificationAdded) EventType() string { return EventTypeMemberQualificationAdded }
func (MemberQualificationAdded) isUserEvent()      {}

type MemberQualificationRemoved struct {
	EventMeta       `bson:",inline"`
	QualificationID string `bson:"qualification_id"`
}

func (MemberQualificationRemoved) EventType() string { return EventTypeMemberQualificationRemoved }
func (MemberQualificationRemoved) isUserEvent()      {}

type InstructorQualificationAdded struct {
	EventMeta       `bson:",inline"`
	QualificationID string `bson:"qualification_id"`
}

func (InstructorQualificationAdded) EventType() string { return EventTypeInstructorQualificationAdded }
func (InstructorQualificationAdded) isUserEvent()      {}

type InstructorQualificationRemoved struct {
	EventMeta       `bson:",inline"`
	QualificationID string `bson:"qualification_id"`
}

func (InstructorQualificationRemoved) EventType() string {
	return EventTypeInstructorQualificationRemoved
}
func (InstructorQualificationRemoved) isUserEvent() {}

type UsernamePasswordIdentityAdded struct {
	EventMeta    `bson:",inline"`
	Username     string `bson:"username"`
	PasswordHash string `bson:"password_hash"`
}

func (UsernamePasswordIdentityAdded) EventType() string {
	return EventTypeUsernamePasswordIdentityAdded
}
func (UsernamePasswordIdentityAdded) isUserEvent() {}

type CardIdentityAdded struct {
	EventMeta  `bson:",inline"`
	CardID     string `bson:"card_id"`
	CardSecret string `bson:"card_secret"`
}

func (CardIdentityAdded) EventType() string { return EventTypeCardIdentityAdded }
func (CardIdentityAdded) isUserEvent()      {}

type PhoneNrIdentityAdded struct {
	EventMeta `bson:",inline"`
	PhoneNr   string `bson:"phone_nr"`
}

func (PhoneNrIdentityAdded) EventType() string { return EventTypePhoneNrIdentityAdded }
func (PhoneNrIdentityAdded) isUserEvent()      {}

type PinIdentityAdded struct {
	EventMeta `bson:",inline"`
	Pin       string `bson:"pin"`
}

func (PinIdentityAdded) EventType() string { return EventTypePinIdentityAdded }
func (PinIdentityAdded) isUserEvent()      {}

type WebauthnIdentityAdded struct {
	EventMeta    `bson:",inline"`
	CredentialID []byte `bson:"credential_id"`
}

func (WebauthnIdentityAdded) EventType() string { return EventTypeWebauthnIdentityAdded }
func (WebauthnIdentityAdded) isUserEvent()      {}

// UserIdentityRemoved removes the identity of the given kind. Since a user
// holds at most one identity per kind, the kind alone identifies it.
type UserIdentityRemoved struct {
	EventMeta    `bson:",inline"`
	IdentityKind IdentityKind `bson:"identity_kind"`
}

func (UserIdentityRemoved) EventType() string { return EventTypeUserIdentityRemoved }
func (UserIdentityRemoved) isUserEvent()      {}

type UserDeleted struct {
	EventMeta `bson:",inline"`
}

func (UserDeleted) EventType() string { return EventTypeUserDeleted }
func (UserDeleted) isUserEvent()      {}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func cloneIdentities(m map[IdentityKind]UserIdentity) map[IdentityKind]UserIdentity {
	out := make(map[IdentityKind]UserIdentity, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Apply folds a single event into the state. Sets and the identity map are
// copied before modification so previous states stay observable.
func (u User) Apply(e UserSourcingEvent) User {
	u.Version = e.Meta().Version
	switch ev := e.(type) {
	case UserCreated:
		u.ID = ev.AggregateID
		u.FirstName = ev.FirstName
		u.LastName = ev.LastName
		u.WikiName = ev.WikiName
		u.MemberQualifications = map[string]struct{}{}
		u.InstructorQualifications = map[string]struct{}{}
		u.Identities = map[IdentityKind]UserIdentity{}
	case UserPersonalInformationChanged:
		u.FirstName = ev.FirstName.Apply(u.FirstName)
		u.LastName = ev.LastName.Apply(u.LastName)
		u.WikiName = ev.WikiName.Apply(u.WikiName)
	case UserLockStateChanged:
		u.Locked = ev.Locked.Apply(u.Locked)
		u.Notes = ev.Notes.Apply(u.Notes)
	case UserIsAdminChanged:
		u.IsAdmin = ev.IsAdmin
	case MemberQualificationAdded:
		quals := cloneSet(u.MemberQualifications)
		quals[ev.QualificationID] = struct{}{}
		u.MemberQualifications = quals
	case MemberQualificationRemoved:
		quals := cloneSet(u.MemberQualifications)
		delete(quals, ev.QualificationID)
		u.MemberQualifications = quals
	case InstructorQualificationAdded:
		quals := cloneSet(u.InstructorQualifications)
		quals[ev.QualificationID] = struct{}{}
		u.InstructorQualifications = quals
	case InstructorQualificationRemoved:
		quals := cloneSet(u.InstructorQualifications)
		delete(quals, ev.QualificationID)
		u.InstructorQualifications = quals
	case UsernamePasswordIdentityAdded:
		ids := cloneIdentities(u.Identities)
		ids[IdentityKindUsernamePassword] = UsernamePasswordIdentity{Username: ev.Username, PasswordHash: ev.PasswordHash}
		u.Identities = ids
	case CardIdentityAdded:
		ids := cloneIdentities(u.Identities)
		ids[IdentityKindCard] = CardIdentity{CardID: ev.CardID, CardSecret: ev.CardSecret}
		u.Identities = ids
	case PhoneNrIdentityAdded:
		ids := cloneIdentities(u.Identities)
		ids[IdentityKindPhoneNr] = PhoneNrIdentity{PhoneNr: ev.PhoneNr}
		u.Identities = ids
	case PinIdentityAdded:
		ids := cloneIdentities(u.Identities)
		ids[IdentityKindPin] = PinIdentity{Pin: ev.Pin}
		u.Identities = ids
	case WebauthnIdentityAdded:
		ids := cloneIdentities(u.Identities)
		ids[IdentityKindWebauthn] = WebauthnIdentity{CredentialID: ev.CredentialID}
		u.Identities = ids
	case UserIdentityRemoved:
		ids := cloneIdentities(u.Identities)
		delete(ids, ev.IdentityKind)
		u.Identities = ids
	case UserDeleted:
		u.Deleted = true
	}
	return u
}

// ReplayUser left-folds an ordered event history into current state.
func ReplayUser(events []UserSourcingEvent) User {
	var u User
	for _, e := range events {
		u = u.Apply(e)
	}
	return u
}

// NewUser derives the creation event for a fresh user id.
func NewUser(id string, actorID, correlationID string, now time.Time, firstName, lastName, wikiName string) UserCreated {
	return UserCreated{
		EventMeta: creationMeta(id, actorID, correlationID, now),
		FirstName: firstName,
		LastName:  lastName,
		WikiName:  wikiName,
	}
}

// ChangePersonalInformation derives a partial-update event.
func (u User) ChangePersonalInformation(actorID, correlationID string, now time.Time, firstName, lastName, wikiName Changeable[string]) UserPersonalInformationChanged {
	return UserPersonalInformationChanged{
		EventMeta: newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		FirstName: firstName,
		LastName:  lastName,
		WikiName:  wikiName,
	}
}

// ChangeLockState derives a lock/notes update event.
func (u User) ChangeLockState(actorID, correlationID string, now time.Time, locked Changeable[bool], notes Changeable[string]) UserLockStateChanged {
	return UserLockStateChanged{
		EventMeta: newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		Locked:    locked,
		Notes:     notes,
	}
}

// ChangeIsAdmin derives an admin-flag change, failing when the flag already
// has the requested value.
func (u User) ChangeIsAdmin(actorID, correlationID string, now time.Time, isAdmin bool) (UserSourcingEvent, *Error) {
	if u.IsAdmin == isAdmin {
		return nil, NewInvariantViolation(correlationID, "admin flag already has requested value", map[string]string{
			"user_id": u.ID,
		})
	}
	return UserIsAdminChanged{
		EventMeta: newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		IsAdmin:   isAdmin,
	}, nil
}

// AddMemberQualification fails when the qualification is already held.
func (u User) AddMemberQualification(actorID, correlationID string, now time.Time, qualificationID string) (UserSourcingEvent, *Error) {
	if _, ok := u.MemberQualifications[qualificationID]; ok {
		return nil, NewInvariantViolation(correlationID, "member qualification already held", map[string]string{
			"user_id":          u.ID,
			"qualification_id": qualificationID,
		})
	}
	return MemberQualificationAdded{
		EventMeta:       newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		QualificationID: qualificationID,
	}, nil
}

// RemoveMemberQualification fails when the qualification is not held.
func (u User) RemoveMemberQualification(actorID, correlationID string, now time.Time, qualificationID string) (UserSourcingEvent, *Error) {
	if _, ok := u.MemberQualifications[qualificationID]; !ok {
		return nil, NewInvariantViolation(correlationID, "member qualification not held", map[string]string{
			"user_id":          u.ID,
			"qualification_id": qualificationID,
		})
	}
	return MemberQualificationRemoved{
		EventMeta:       newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		QualificationID: qualificationID,
	}, nil
}

// AddInstructorQualification fails when the qualification is already held.
func (u User) AddInstructorQualification(actorID, correlationID string, now time.Time, qualificationID string) (UserSourcingEvent, *Error) {
	if _, ok := u.InstructorQualifications[qualificationID]; ok {
		return nil, NewInvariantViolation(correlationID, "instructor qualification already held", map[string]string{
			"user_id":          u.ID,
			"qualification_id": qualificationID,
		})
	}
	return InstructorQualificationAdded{
		EventMeta:       newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		QualificationID: qualificationID,
	}, nil
}

// RemoveInstructorQualification fails when the qualification is not held.
func (u User) RemoveInstructorQualification(actorID, correlationID string, now time.Time, qualificationID string) (UserSourcingEvent, *Error) {
	if _, ok := u.InstructorQualifications[qualificationID]; !ok {
		return nil, NewInvariantViolation(correlationID, "instructor qualification not held", map[string]string{
			"user_id":          u.ID,
			"qualification_id": qualificationID,
		})
	}
	return InstructorQualificationRemoved{
		EventMeta:       newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		QualificationID: qualificationID,
	}, nil
}

// AddIdentity derives the add event for the given identity, failing when an
// identity of that kind is already present.
func (u User) AddIdentity(actorID, correlationID string, now time.Time, identity UserIdentity) (UserSourcingEvent, *Error) {
	if _, ok := u.Identities[identity.Kind()]; ok {
		return nil, NewInvariantViolation(correlationID, "identity of this kind already present", map[string]string{
			"user_id":       u.ID,
			"identity_kind": string(identity.Kind()),
		})
	}
	meta := newEventMeta(u.ID, u.Version, actorID, correlationID, now)
	switch id := identity.(type) {
	case UsernamePasswordIdentity:
		return UsernamePasswordIdentityAdded{EventMeta: meta, Username: id.Username, PasswordHash: id.PasswordHash}, nil
	case CardIdentity:
		return CardIdentityAdded{EventMeta: meta, CardID: id.CardID, CardSecret: id.CardSecret}, nil
	case PhoneNrIdentity:
		return PhoneNrIdentityAdded{EventMeta: meta, PhoneNr: id.PhoneNr}, nil
	case PinIdentity:
		return PinIdentityAdded{EventMeta: meta, Pin: id.Pin}, nil
	case WebauthnIdentity:
		return WebauthnIdentityAdded{EventMeta: meta, CredentialID: id.CredentialID}, nil
	}
	return nil, NewInvariantViolation(correlationID, "unknown identity kind", map[string]string{
		"user_id": u.ID,
	})
}

// RemoveIdentity derives the removal event for the given kind, failing fast
// when no identity of that kind is present. The same policy applies to all
// identity kinds.
func (u User) RemoveIdentity(actorID, correlationID string, now time.Time, kind IdentityKind) (UserSourcingEvent, *Error) {
	if _, ok := u.Identities[kind]; !ok {
		return nil, NewInvariantViolation(correlationID, "identity of this kind not present", map[string]string{
			"user_id":       u.ID,
			"identity_kind": string(kind),
		})
	}
	return UserIdentityRemoved{
		EventMeta:    newEventMeta(u.ID, u.Version, actorID, correlationID, now),
		IdentityKind: kind,
	}, nil
}

// Delete derives the soft-termination event.
func (u User) Delete(actorID, correlationID string, now time.Time) UserDeleted {
	return UserDeleted{
		EventMeta: newEventMeta(u.ID, u.Version, actorID, correlationID, now),
	}
}
