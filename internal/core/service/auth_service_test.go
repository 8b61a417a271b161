package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T) (*stubUserRepo, *stubDeviceRepo, ports.UserService, *AuthService) {
	t.Helper()
	users := newStubUserRepo()
	devices := newStubDeviceRepo()
	qualifications := newStubQualificationRepo()
	pub := &recordingPublisher{}
	userService := NewUserService(users, qualifications, pub, stubHasher{}, testClock, sequentialIDs(), discardLogger)
	authService := NewAuthService(users, devices, stubHasher{}, testJWTSecret, time.Hour)
	return users, devices, userService, authService
}

func parseTestToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	return claims
}

func TestAuthService_Login_Success(t *testing.T) {
	_, _, userService, authService := newAuthFixture(t)
	ctx := context.Background()
	id := addUser(t, userService, "Jane")
	if err := userService.AddUsernamePasswordIdentity(ctx, admin, "corr1", id, "jane", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, user, err := authService.Login(ctx, "corr2", "jane", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != id {
		t.Errorf("wrong user returned: %s", user.ID)
	}

	claims := parseTestToken(t, token)
	if claims["sub"] != id {
		t.Errorf("sub claim wrong: %v", claims["sub"])
	}
	if claims["is_admin"] != false {
		t.Errorf("is_admin claim wrong: %v", claims["is_admin"])
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	_, _, userService, authService := newAuthFixture(t)
	ctx := context.Background()
	id := addUser(t, userService, "Jane")
	if err := userService.AddUsernamePasswordIdentity(ctx, admin, "corr1", id, "jane", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err := authService.Login(ctx, "corr2", "jane", "wrong")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
}

func TestAuthService_Login_UnknownUsername(t *testing.T) {
	_, _, _, authService := newAuthFixture(t)

	_, _, err := authService.Login(context.Background(), "corr1", "ghost", "secret")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
}

func TestAuthService_Login_LockedUser(t *testing.T) {
	_, _, userService, authService := newAuthFixture(t)
	ctx := context.Background()
	id := addUser(t, userService, "Jane")
	if err := userService.AddUsernamePasswordIdentity(ctx, admin, "corr1", id, "jane", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := userService.ChangeLockState(ctx, admin, "corr2", id, ports.LockStateUpdate{
		Locked: domain.ChangeTo(true),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err := authService.Login(ctx, "corr3", "jane", "secret")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("locked user must not authenticate, got %v", err)
	}
}

func TestAuthService_IssueDeviceToken_AdminOnly(t *testing.T) {
	_, devices, _, authService := newAuthFixture(t)
	ctx := context.Background()
	event := domain.NewDevice("d1", "admin1", "seed", testTime, "Entrance", "", "")
	if err := devices.Store(ctx, event); err != nil {
		t.Fatalf("seeding device: %v", err)
	}

	_, err := authService.IssueDeviceToken(ctx, domain.Member{UserID: "u1"}, "corr1", "d1")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	token, err := authService.IssueDeviceToken(ctx, admin, "corr2", "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims := parseTestToken(t, token)
	if claims["sub"] != "d1" || claims["role"] != "device" {
		t.Errorf("device claims wrong: %v", claims)
	}
}

func TestAuthService_IssueDeviceToken_UnknownDevice(t *testing.T) {
	_, _, _, authService := newAuthFixture(t)

	_, err := authService.IssueDeviceToken(context.Background(), admin, "corr1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
