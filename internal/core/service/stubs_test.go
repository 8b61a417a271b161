package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/makerhive/access-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
//
// Store enforces the same optimistic-concurrency rule as the Mongo event
// store: an event targeting version N appends only when exactly N-1 events
// are already persisted for its aggregate id.
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func versionConflict(have int, event domain.SourcingEvent) error {
	if event.Meta().Version != int64(have)+1 {
		return domain.NewVersionConflict("", "aggregate version changed since load", nil)
	}
	return nil
}

type stubQualificationRepo struct {
	mu       sync.Mutex
	events   map[string][]domain.QualificationSourcingEvent
	storeErr error
	stores   int
	reads    int
}

func newStubQualificationRepo() *stubQualificationRepo {
	return &stubQualificationRepo{events: make(map[string][]domain.QualificationSourcingEvent)}
}

func (r *stubQualificationRepo) GetByID(_ context.Context, id string) (*domain.Qualification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	events, ok := r.events[id]
	if !ok {
		return nil, domain.NewNotFound("", "qualification not found", nil)
	}
	q := domain.ReplayQualification(events)
	if q.Deleted {
		return nil, domain.NewNotFound("", "qualification not found", nil)
	}
	return &q, nil
}

func (r *stubQualificationRepo) GetAll(_ context.Context) ([]*domain.Qualification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Qualification
	for _, events := range r.events {
		q := domain.ReplayQualification(events)
		if !q.Deleted {
			out = append(out, &q)
		}
	}
	return out, nil
}

func (r *stubQualificationRepo) GetSourcingEventsByID(_ context.Context, id string) ([]domain.QualificationSourcingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.QualificationSourcingEvent(nil), r.events[id]...), nil
}

func (r *stubQualificationRepo) Store(_ context.Context, event domain.QualificationSourcingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.storeErr != nil {
		return r.storeErr
	}
	id := event.Meta().AggregateID
	if err := versionConflict(len(r.events[id]), event); err != nil {
		return err
	}
	r.events[id] = append(r.events[id], event)
	r.stores++
	return nil
}

type stubToolRepo struct {
	mu       sync.Mutex
	events   map[string][]domain.ToolSourcingEvent
	storeErr error
	stores   int
}

func newStubToolRepo() *stubToolRepo {
	return &stubToolRepo{events: make(map[string][]domain.ToolSourcingEvent)}
}

func (r *stubToolRepo) GetByID(_ context.Context, id string) (*domain.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events, ok := r.events[id]
	if !ok {
		return nil, domain.NewNotFound("", "tool not found", nil)
	}
	tool := domain.ReplayTool(events)
	if tool.Deleted {
		return nil, domain.NewNotFound("", "tool not found", nil)
	}
	return &tool, nil
}

func (r *stubToolRepo) GetAll(_ context.Context) ([]*domain.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Tool
	for _, events := range r.events {
		tool := domain.ReplayTool(events)
		if !tool.Deleted {
			out = append(out, &tool)
		}
	}
	return out, nil
}

func (r *stubToolRepo) GetSourcingEventsByID(_ context.Context, id string) ([]domain.ToolSourcingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ToolSourcingEvent(nil), r.events[id]...), nil
}

func (r *stubToolRepo) Store(_ context.Context, event domain.ToolSourcingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.storeErr != nil {
		return r.storeErr
	}
	id := event.Meta().AggregateID
	if err := versionConflict(len(r.events[id]), event); err != nil {
		return err
	}
	r.events[id] = append(r.events[id], event)
	r.stores++
	return nil
}

type stubDeviceRepo struct {
	mu       sync.Mutex
	events   map[string][]domain.DeviceSourcingEvent
	storeErr error
	stores   int
}

func newStubDeviceRepo() *stubDeviceRepo {
	return &stubDeviceRepo{events: make(map[string][]domain.DeviceSourcingEvent)}
}

func (r *stubDeviceRepo) GetByID(_ context.Context, id string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events, ok := r.events[id]
	if !ok {
		return nil, domain.NewNotFound("", "device not found", nil)
	}
	device := domain.ReplayDevice(events)
	if device.Deleted {
		return nil, domain.NewNotFound("", "device not found", nil)
	}
	return &device, nil
}

func (r *stubDeviceRepo) GetAll(_ context.Context) ([]*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Device
	for _, events := range r.events {
		device := domain.ReplayDevice(events)
		if !device.Deleted {
			out = append(out, &device)
		}
	}
	return out, nil
}

func (r *stubDeviceRepo) GetSourcingEventsByID(_ context.Context, id string) ([]domain.DeviceSourcingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DeviceSourcingEvent(nil), r.events[id]...), nil
}

func (r *stubDeviceRepo) Store(_ context.Context, event domain.DeviceSourcingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.storeErr != nil {
		return r.storeErr
	}
	id := event.Meta().AggregateID
	if err := versionConflict(len(r.events[id]), event); err != nil {
		return err
	}
	r.events[id] = append(r.events[id], event)
	r.stores++
	return nil
}

func (r *stubDeviceRepo) GetByAttachedTool(ctx context.Context, toolID string) ([]*domain.Device, error) {
	devices, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Device
	for _, device := range devices {
		for _, attached := range device.AttachedTools {
			if attached == toolID {
				out = append(out, device)
				break
			}
		}
	}
	return out, nil
}

type stubUserRepo struct {
	mu          sync.Mutex
	events      map[string][]domain.UserSourcingEvent
	storeErr    error
	usernameErr error
	stores      int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{events: make(map[string][]domain.UserSourcingEvent)}
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events, ok := r.events[id]
	if !ok {
		return nil, domain.NewNotFound("", "user not found", nil)
	}
	user := domain.ReplayUser(events)
	if user.Deleted {
		return nil, domain.NewNotFound("", "user not found", nil)
	}
	return &user, nil
}

func (r *stubUserRepo) GetAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, events := range r.events {
		user := domain.ReplayUser(events)
		if !user.Deleted {
			out = append(out, &user)
		}
	}
	return out, nil
}

func (r *stubUserRepo) GetSourcingEventsByID(_ context.Context, id string) ([]domain.UserSourcingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.UserSourcingEvent(nil), r.events[id]...), nil
}

func (r *stubUserRepo) Store(_ context.Context, event domain.UserSourcingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.storeErr != nil {
		return r.storeErr
	}
	id := event.Meta().AggregateID
	if err := versionConflict(len(r.events[id]), event); err != nil {
		return err
	}
	r.events[id] = append(r.events[id], event)
	r.stores++
	return nil
}

func (r *stubUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.usernameErr != nil {
		return nil, r.usernameErr
	}
	users, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		identity, ok := user.Identities[domain.IdentityKindUsernamePassword].(domain.UsernamePasswordIdentity)
		if ok && identity.Username == username {
			return user, nil
		}
	}
	return nil, domain.NewNotFound("", "user not found", nil)
}

func (r *stubUserRepo) GetByQualification(ctx context.Context, qualificationID string) ([]*domain.User, error) {
	users, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.User
	for _, user := range users {
		_, member := user.MemberQualifications[qualificationID]
		_, instructor := user.InstructorQualifications[qualificationID]
		if member || instructor {
			out = append(out, user)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Recording publisher
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SourcingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.SourcingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) published() []domain.SourcingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SourcingEvent(nil), p.events...)
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testTime }

// sequentialIDs returns an id generator minting id-1, id-2, ...
func sequentialIDs() IDGenerator {
	var n int
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}
