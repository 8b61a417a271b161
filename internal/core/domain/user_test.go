package domain

import (
	"errors"
	"testing"
)

func testUser(t *testing.T) User {
	t.Helper()
	created := NewUser("u1", "admin1", "corr1", testTime, "Ada", "Lovelace", "alovelace")
	return ReplayUser([]UserSourcingEvent{created})
}

func TestUser_AddMemberQualification_AlreadyHeld_Fails(t *testing.T) {
	u := testUser(t)
	event, _ := u.AddMemberQualification("admin1", "corr2", testTime, "q1")
	u = u.Apply(event)

	_, derr := u.AddMemberQualification("admin1", "corr3", testTime, "q1")
	if derr == nil {
		t.Fatal("granting an already held qualification must fail")
	}
	if !errors.Is(derr, ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", derr)
	}
}

func TestUser_RemoveMemberQualification_NotHeld_Fails(t *testing.T) {
	u := testUser(t)

	_, derr := u.RemoveMemberQualification("admin1", "corr2", testTime, "q1")
	if derr == nil {
		t.Fatal("revoking a qualification that is not held must fail")
	}
	if !errors.Is(derr, ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", derr)
	}
}

func TestUser_AddIdentity_DuplicateKind_Fails(t *testing.T) {
	u := testUser(t)
	event, _ := u.AddIdentity("admin1", "corr2", testTime, PinIdentity{Pin: "1234"})
	u = u.Apply(event)

	_, derr := u.AddIdentity("admin1", "corr3", testTime, PinIdentity{Pin: "5678"})
	if derr == nil {
		t.Fatal("a second identity of the same kind must be rejected")
	}
	if !errors.Is(derr, ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", derr)
	}
}

func TestUser_AddIdentity_DifferentKinds_Coexist(t *testing.T) {
	u := testUser(t)

	for _, identity := range []UserIdentity{
		UsernamePasswordIdentity{Username: "ada", PasswordHash: "hash"},
		CardIdentity{CardID: "card-1", CardSecret: "secret"},
		PhoneNrIdentity{PhoneNr: "+4915112345678"},
		PinIdentity{Pin: "1234"},
		WebauthnIdentity{CredentialID: []byte{1, 2, 3}},
	} {
		event, derr := u.AddIdentity("admin1", "corr", testTime, identity)
		if derr != nil {
			t.Fatalf("adding %s identity failed: %v", identity.Kind(), derr)
		}
		u = u.Apply(event)
	}

	if len(u.Identities) != 5 {
		t.Errorf("expected 5 identities, got %d", len(u.Identities))
	}
}

func TestUser_RemoveIdentity_Absent_Fails(t *testing.T) {
	u := testUser(t)

	_, derr := u.RemoveIdentity("admin1", "corr2", testTime, IdentityKindCard)
	if derr == nil {
		t.Fatal("removing an absent identity must fail")
	}
	if !errors.Is(derr, ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", derr)
	}
}

func TestUser_RemoveIdentity_ByKind(t *testing.T) {
	u := testUser(t)
	event, _ := u.AddIdentity("admin1", "corr2", testTime, CardIdentity{CardID: "card-1", CardSecret: "s"})
	u = u.Apply(event)

	removal, derr := u.RemoveIdentity("admin1", "corr3", testTime, IdentityKindCard)
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	u = u.Apply(removal)

	if _, ok := u.Identities[IdentityKindCard]; ok {
		t.Error("card identity must be gone after removal")
	}
}

func TestUser_ChangeIsAdmin_Unchanged_Fails(t *testing.T) {
	u := testUser(t)

	_, derr := u.ChangeIsAdmin("admin1", "corr2", testTime, false)
	if derr == nil {
		t.Fatal("setting the admin flag to its current value must fail")
	}
	if !errors.Is(derr, ErrInvariantViolation) {
		t.Errorf("expected invariant violation, got %v", derr)
	}
}

func TestUser_Actor_Derivation(t *testing.T) {
	u := testUser(t)

	if _, ok := u.Actor().(Member); !ok {
		t.Errorf("plain user must act as Member, got %T", u.Actor())
	}

	event, _ := u.AddInstructorQualification("admin1", "corr2", testTime, "q1")
	u = u.Apply(event)
	if _, ok := u.Actor().(Instructor); !ok {
		t.Errorf("user with instructor qualification must act as Instructor, got %T", u.Actor())
	}

	adminEvent, _ := u.ChangeIsAdmin("admin1", "corr3", testTime, true)
	u = u.Apply(adminEvent)
	if _, ok := u.Actor().(Admin); !ok {
		t.Errorf("admin flag must win over instructor, got %T", u.Actor())
	}
}

func TestUser_Replay_IsDeterministic(t *testing.T) {
	created := NewUser("u1", "admin1", "corr1", testTime, "Ada", "Lovelace", "alovelace")
	u := ReplayUser([]UserSourcingEvent{created})
	grant, _ := u.AddMemberQualification("admin1", "corr2", testTime, "q1")
	u = u.Apply(grant)
	lock := u.ChangeLockState("admin1", "corr3", testTime, ChangeTo(true), ChangeTo("no-show"))

	history := []UserSourcingEvent{created, grant, lock}
	first := ReplayUser(history)
	second := ReplayUser(history)

	if first.Version != second.Version || first.Locked != second.Locked ||
		len(first.MemberQualifications) != len(second.MemberQualifications) {
		t.Errorf("replaying the same history must yield identical state: %+v vs %+v", first, second)
	}
	if !first.Locked || first.Notes != "no-show" {
		t.Errorf("lock state not applied: %+v", first)
	}
}
