package service

import (
	"context"
	"errors"
	"testing"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

func newToolFixture() (*stubToolRepo, *stubQualificationRepo, *recordingPublisher, ports.ToolService) {
	tools := newStubToolRepo()
	qualifications := newStubQualificationRepo()
	pub := &recordingPublisher{}
	svc := NewToolService(tools, qualifications, pub, testClock, sequentialIDs(), discardLogger)
	return tools, qualifications, pub, svc
}

func seedQualification(t *testing.T, repo *stubQualificationRepo, id string) {
	t.Helper()
	event := domain.NewQualification(id, "admin1", "seed", testTime, "Seeded", "", "#000000", 0)
	if err := repo.Store(context.Background(), event); err != nil {
		t.Fatalf("seeding qualification %s: %v", id, err)
	}
}

func TestToolService_Add_Success(t *testing.T) {
	tools, qualifications, pub, svc := newToolFixture()
	seedQualification(t, qualifications, "q1")

	id, err := svc.AddTool(context.Background(), admin, "corr1", ports.AddToolInput{
		Name: "Lasercutter", Type: domain.ToolTypeUnlock, TimeLimitSeconds: 0,
		RequiredQualifications: []string{"q1"}, Enabled: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tools.events[id]) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(tools.events[id]))
	}
	if len(pub.published()) != 1 {
		t.Errorf("expected 1 published event, got %d", len(pub.published()))
	}
}

func TestToolService_Add_UnknownQualification(t *testing.T) {
	tools, _, pub, svc := newToolFixture()

	_, err := svc.AddTool(context.Background(), admin, "corr1", ports.AddToolInput{
		Name: "Lasercutter", Type: domain.ToolTypeUnlock,
		RequiredQualifications: []string{"missing"}, Enabled: true,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if tools.stores != 0 {
		t.Error("rejected command must not touch the event store")
	}
	if len(pub.published()) != 0 {
		t.Error("rejected command must not publish")
	}
}

func TestToolService_ChangeDetails_ValidatesAddedQualifications(t *testing.T) {
	tools, qualifications, _, svc := newToolFixture()
	seedQualification(t, qualifications, "q1")
	id, _ := svc.AddTool(context.Background(), admin, "corr1", ports.AddToolInput{
		Name: "Drill", Type: domain.ToolTypeKeep, RequiredQualifications: []string{"q1"}, Enabled: true,
	})

	err := svc.ChangeToolDetails(context.Background(), admin, "corr2", id, ports.ToolDetailsUpdate{
		RequiredQualifications: domain.ChangeTo([]string{"q1", "missing"}),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	tool, _ := tools.GetByID(context.Background(), id)
	if tool.Version != 1 {
		t.Errorf("rejected update must not advance version, got %d", tool.Version)
	}
}

func TestToolService_ChangeDetails_PartialUpdate(t *testing.T) {
	tools, qualifications, _, svc := newToolFixture()
	seedQualification(t, qualifications, "q1")
	id, _ := svc.AddTool(context.Background(), admin, "corr1", ports.AddToolInput{
		Name: "Drill", Type: domain.ToolTypeKeep, TimeLimitSeconds: 600,
		RequiredQualifications: []string{"q1"}, Enabled: true,
	})

	err := svc.ChangeToolDetails(context.Background(), admin, "corr2", id, ports.ToolDetailsUpdate{
		Enabled: domain.ChangeTo(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tool, _ := tools.GetByID(context.Background(), id)
	if tool.Enabled {
		t.Error("enabled flag not applied")
	}
	if tool.Name != "Drill" || tool.TimeLimitSeconds != 600 || len(tool.RequiredQualifications) != 1 {
		t.Errorf("absent fields must stay untouched: %+v", tool)
	}
}

func TestToolService_Delete_MemberDenied(t *testing.T) {
	_, qualifications, _, svc := newToolFixture()
	seedQualification(t, qualifications, "q1")
	id, _ := svc.AddTool(context.Background(), admin, "corr1", ports.AddToolInput{
		Name: "Drill", Type: domain.ToolTypeKeep, RequiredQualifications: []string{"q1"}, Enabled: true,
	})

	err := svc.DeleteTool(context.Background(), domain.Member{UserID: "u1"}, "corr2", id)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestToolService_GetAll_MemberAllowed(t *testing.T) {
	_, qualifications, _, svc := newToolFixture()
	seedQualification(t, qualifications, "q1")
	if _, err := svc.AddTool(context.Background(), admin, "corr1", ports.AddToolInput{
		Name: "Drill", Type: domain.ToolTypeKeep, RequiredQualifications: []string{"q1"}, Enabled: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listed, err := svc.GetAllTools(context.Background(), domain.Member{UserID: "u1"}, "corr2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 tool, got %d", len(listed))
	}
}
