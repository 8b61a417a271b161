package service

import (
	"context"
	"errors"
	"testing"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

func newQualificationFixture() (*stubQualificationRepo, *recordingPublisher, ports.QualificationService) {
	repo := newStubQualificationRepo()
	pub := &recordingPublisher{}
	svc := NewQualificationService(repo, pub, testClock, sequentialIDs(), discardLogger)
	return repo, pub, svc
}

var admin = domain.Admin{UserID: "admin1"}

func TestQualificationService_Add_Success(t *testing.T) {
	repo, pub, svc := newQualificationFixture()

	id, err := svc.AddQualification(context.Background(), admin, "corr1", ports.AddQualificationInput{
		Name: "Lasercutter", Description: "Basic usage", Colour: "#ff0000", OrderNr: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a minted id")
	}

	events := repo.events[id]
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	meta := events[0].Meta()
	if meta.Version != 1 || meta.ActorID != "admin1" || meta.CorrelationID != "corr1" {
		t.Errorf("event metadata wrong: %+v", meta)
	}
	if len(pub.published()) != 1 {
		t.Errorf("expected 1 published event, got %d", len(pub.published()))
	}
}

func TestQualificationService_Add_MemberDenied(t *testing.T) {
	repo, pub, svc := newQualificationFixture()

	_, err := svc.AddQualification(context.Background(), domain.Member{UserID: "u1"}, "corr1", ports.AddQualificationInput{Name: "X"})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if repo.reads != 0 || repo.stores != 0 {
		t.Error("a denied command must not touch the event store")
	}
	if len(pub.published()) != 0 {
		t.Error("a denied command must not publish")
	}
}

func TestQualificationService_Add_NilActor(t *testing.T) {
	_, _, svc := newQualificationFixture()

	_, err := svc.AddQualification(context.Background(), nil, "corr1", ports.AddQualificationInput{Name: "X"})
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
}

func TestQualificationService_ChangeDetails_LeaveAsIs(t *testing.T) {
	repo, _, svc := newQualificationFixture()
	id, _ := svc.AddQualification(context.Background(), admin, "corr1", ports.AddQualificationInput{
		Name: "Lasercutter", Description: "Basic usage", Colour: "#ff0000", OrderNr: 1,
	})

	err := svc.ChangeQualificationDetails(context.Background(), admin, "corr2", id, ports.QualificationDetailsUpdate{
		Name: domain.ChangeTo("Laser"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q, _ := repo.GetByID(context.Background(), id)
	if q.Name != "Laser" {
		t.Errorf("changed field not applied: %q", q.Name)
	}
	if q.Description != "Basic usage" || q.Colour != "#ff0000" || q.OrderNr != 1 {
		t.Errorf("absent fields must stay untouched: %+v", q)
	}
	if q.Version != 2 {
		t.Errorf("expected version 2, got %d", q.Version)
	}
}

func TestQualificationService_ChangeDetails_Unknown(t *testing.T) {
	_, _, svc := newQualificationFixture()

	err := svc.ChangeQualificationDetails(context.Background(), admin, "corr1", "missing", ports.QualificationDetailsUpdate{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQualificationService_Delete_HidesQualification(t *testing.T) {
	repo, _, svc := newQualificationFixture()
	id, _ := svc.AddQualification(context.Background(), admin, "corr1", ports.AddQualificationInput{Name: "X"})

	if err := svc.DeleteQualification(context.Background(), admin, "corr2", id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted qualification must read as not found, got %v", err)
	}
	// The history itself stays.
	if len(repo.events[id]) != 2 {
		t.Errorf("expected 2 events in history, got %d", len(repo.events[id]))
	}
}

func TestQualificationStore_RacingAppendsExcludeEachOther(t *testing.T) {
	repo, _, svc := newQualificationFixture()
	id, _ := svc.AddQualification(context.Background(), admin, "corr1", ports.AddQualificationInput{Name: "X"})

	// Two writers load the same state and derive competing version-2 events.
	loaded, _ := repo.GetByID(context.Background(), id)
	first := loaded.ChangeDetails("admin1", "corr-a", testTime, domain.ChangeTo("A"), domain.LeaveAsIs[string](), domain.LeaveAsIs[string](), domain.LeaveAsIs[int]())
	second := loaded.ChangeDetails("admin2", "corr-b", testTime, domain.ChangeTo("B"), domain.LeaveAsIs[string](), domain.LeaveAsIs[string](), domain.LeaveAsIs[int]())

	if err := repo.Store(context.Background(), first); err != nil {
		t.Fatalf("first append must win: %v", err)
	}
	if err := repo.Store(context.Background(), second); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("second append must lose with a version conflict, got %v", err)
	}

	q, _ := repo.GetByID(context.Background(), id)
	if q.Name != "A" || q.Version != 2 {
		t.Errorf("state must reflect only the winning append: %+v", q)
	}
}

func TestQualificationService_VersionConflict_Surfaces(t *testing.T) {
	repo, pub, svc := newQualificationFixture()
	id, _ := svc.AddQualification(context.Background(), admin, "corr1", ports.AddQualificationInput{Name: "X"})
	publishedBefore := len(pub.published())

	repo.storeErr = domain.NewVersionConflict("", "concurrent append won the race", nil)

	err := svc.ChangeQualificationDetails(context.Background(), admin, "corr2", id, ports.QualificationDetailsUpdate{
		Name: domain.ChangeTo("Y"),
	})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if len(pub.published()) != publishedBefore {
		t.Error("a conflicted command must not publish")
	}
}
