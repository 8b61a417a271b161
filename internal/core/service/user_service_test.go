package service

import (
	"context"
	"errors"
	"testing"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func newUserFixture() (*stubUserRepo, *stubQualificationRepo, *recordingPublisher, ports.UserService) {
	users := newStubUserRepo()
	qualifications := newStubQualificationRepo()
	pub := &recordingPublisher{}
	svc := NewUserService(users, qualifications, pub, stubHasher{}, testClock, sequentialIDs(), discardLogger)
	return users, qualifications, pub, svc
}

func addUser(t *testing.T, svc ports.UserService, firstName string) string {
	t.Helper()
	id, err := svc.AddUser(context.Background(), admin, "seed", ports.AddUserInput{
		FirstName: firstName, LastName: "Doe", WikiName: firstName + "Doe",
	})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return id
}

// ---------------------------------------------------------------------------
// Member qualification grants
// ---------------------------------------------------------------------------

func TestUserService_AddMemberQualification_InstructorHoldingAllowed(t *testing.T) {
	users, qualifications, _, svc := newUserFixture()
	seedQualification(t, qualifications, "q1")
	id := addUser(t, svc, "Jane")

	instructor := domain.Instructor{
		UserID:                   "inst1",
		InstructorQualifications: map[string]struct{}{"q1": {}},
	}
	if err := svc.AddMemberQualification(context.Background(), instructor, "corr1", id, "q1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _ := users.GetByID(context.Background(), id)
	if _, held := user.MemberQualifications["q1"]; !held {
		t.Error("qualification not granted")
	}
}

func TestUserService_AddMemberQualification_InstructorNotHoldingDenied(t *testing.T) {
	users, qualifications, _, svc := newUserFixture()
	seedQualification(t, qualifications, "q1")
	seedQualification(t, qualifications, "q2")
	id := addUser(t, svc, "Jane")
	storesBefore := users.stores

	instructor := domain.Instructor{
		UserID:                   "inst1",
		InstructorQualifications: map[string]struct{}{"q2": {}},
	}
	err := svc.AddMemberQualification(context.Background(), instructor, "corr1", id, "q1")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if users.stores != storesBefore {
		t.Error("a denied grant must not touch the event store")
	}
}

func TestUserService_AddMemberQualification_UnknownQualification(t *testing.T) {
	_, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")

	err := svc.AddMemberQualification(context.Background(), admin, "corr1", id, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserService_AddMemberQualification_AlreadyHeld(t *testing.T) {
	_, qualifications, _, svc := newUserFixture()
	seedQualification(t, qualifications, "q1")
	id := addUser(t, svc, "Jane")
	if err := svc.AddMemberQualification(context.Background(), admin, "corr1", id, "q1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.AddMemberQualification(context.Background(), admin, "corr2", id, "q1")
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func TestUserService_AddInstructorQualification_RequiresAdmin(t *testing.T) {
	_, qualifications, _, svc := newUserFixture()
	seedQualification(t, qualifications, "q1")
	id := addUser(t, svc, "Jane")

	instructor := domain.Instructor{
		UserID:                   "inst1",
		InstructorQualifications: map[string]struct{}{"q1": {}},
	}
	err := svc.AddInstructorQualification(context.Background(), instructor, "corr1", id, "q1")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("instructor grants are admin-only, got %v", err)
	}

	if err := svc.AddInstructorQualification(context.Background(), admin, "corr2", id, "q1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Identities
// ---------------------------------------------------------------------------

func TestUserService_AddUsernamePasswordIdentity_HashesPassword(t *testing.T) {
	users, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")

	if err := svc.AddUsernamePasswordIdentity(context.Background(), admin, "corr1", id, "jane", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _ := users.GetByID(context.Background(), id)
	identity, ok := user.Identities[domain.IdentityKindUsernamePassword].(domain.UsernamePasswordIdentity)
	if !ok {
		t.Fatal("identity not present")
	}
	if identity.PasswordHash != "hashed:secret" {
		t.Errorf("stored hash wrong: %q", identity.PasswordHash)
	}
}

func TestUserService_AddUsernamePasswordIdentity_UsernameTaken(t *testing.T) {
	_, _, _, svc := newUserFixture()
	first := addUser(t, svc, "Jane")
	second := addUser(t, svc, "John")
	if err := svc.AddUsernamePasswordIdentity(context.Background(), admin, "corr1", first, "jane", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.AddUsernamePasswordIdentity(context.Background(), admin, "corr2", second, "jane", "other")
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func TestUserService_AddUsernamePasswordIdentity_LookupFailureSurfaces(t *testing.T) {
	users, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")
	storesBefore := users.stores

	users.usernameErr = domain.NewStorageUnavailable("", errors.New("connection reset"))

	err := svc.AddUsernamePasswordIdentity(context.Background(), admin, "corr1", id, "jane", "secret")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("a failed uniqueness check must not pass as a free username, got %v", err)
	}
	if users.stores != storesBefore {
		t.Error("nothing may be appended when the uniqueness check could not run")
	}
}

func TestUserService_AddPinIdentity_SelfAllowedOtherDenied(t *testing.T) {
	_, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")

	self := domain.Member{UserID: id}
	if err := svc.AddPinIdentity(context.Background(), self, "corr1", id, "1234"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := domain.Member{UserID: "someone-else"}
	err := svc.AddCardIdentity(context.Background(), other, "corr2", id, "card1", "secret")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestUserService_AddCardIdentity_DeviceOnBehalfOf(t *testing.T) {
	users, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")

	device := domain.DeviceActor{DeviceID: "d1", OnBehalfOf: &domain.Member{UserID: id}}
	if err := svc.AddCardIdentity(context.Background(), device, "corr1", id, "card1", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, _ := users.GetByID(context.Background(), id)
	if _, ok := user.Identities[domain.IdentityKindCard]; !ok {
		t.Error("card identity not present")
	}

	// Without an on-behalf-of member the device may not touch identities.
	bare := domain.DeviceActor{DeviceID: "d1"}
	err := svc.AddPinIdentity(context.Background(), bare, "corr2", id, "1234")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestUserService_RemoveIdentity_AbsentKind(t *testing.T) {
	_, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")

	err := svc.RemoveIdentity(context.Background(), admin, "corr1", id, domain.IdentityKindWebauthn)
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestUserService_GetUser_SelfReadAllowed(t *testing.T) {
	_, _, _, svc := newUserFixture()
	id := addUser(t, svc, "Jane")

	user, err := svc.GetUser(context.Background(), domain.Member{UserID: id}, "corr1", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != id {
		t.Errorf("wrong user returned: %s", user.ID)
	}

	_, err = svc.GetUser(context.Background(), domain.Member{UserID: "someone-else"}, "corr2", id)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestUserService_GetAllUsers_AdminOnly(t *testing.T) {
	_, _, _, svc := newUserFixture()
	addUser(t, svc, "Jane")

	_, err := svc.GetAllUsers(context.Background(), domain.Member{UserID: "u1"}, "corr1")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	listed, err := svc.GetAllUsers(context.Background(), admin, "corr2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 user, got %d", len(listed))
	}
}

// ---------------------------------------------------------------------------
// Cascade reactions
// ---------------------------------------------------------------------------

func TestUserService_QualificationDeletedReaction_StampsCause(t *testing.T) {
	users, qualifications, _, svc := newUserFixture()
	seedQualification(t, qualifications, "q1")
	id := addUser(t, svc, "Jane")
	if err := svc.AddMemberQualification(context.Background(), admin, "corr1", id, "q1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cause := domain.QualificationDeleted{EventMeta: domain.EventMeta{
		AggregateID: "q1", Version: 2, ActorID: "admin9", CorrelationID: "corr-delete", Timestamp: testTime,
	}}
	if err := svc.RemoveMemberQualificationOnQualificationDeleted(context.Background(), cause, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := users.events[id]
	last := events[len(events)-1].Meta()
	if last.ActorID != "admin9" || last.CorrelationID != "corr-delete" {
		t.Errorf("cascade event must carry the cause's actor and correlation id: %+v", last)
	}

	user, _ := users.GetByID(context.Background(), id)
	if _, held := user.MemberQualifications["q1"]; held {
		t.Error("qualification must be removed by the cascade")
	}
}
