package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// PasswordComparer abstracts the externally supplied secret comparison.
type PasswordComparer interface {
	Compare(hash, password string) error
}

// deviceTokenTTL bounds how long a provisioned controller token stays valid.
// Controllers are expected to be re-provisioned well within this window.
const deviceTokenTTL = 90 * 24 * time.Hour

// AuthService verifies username/password identities and issues HS256 tokens
// the transport layer turns back into actors.
type AuthService struct {
	users     ports.UserRepository
	devices   ports.DeviceRepository
	comparer  PasswordComparer
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, devices ports.DeviceRepository, comparer PasswordComparer, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthService{users: users, devices: devices, comparer: comparer, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Login(ctx context.Context, correlationID, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.NewNotAuthenticated(correlationID, "username and password required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, domain.NewNotAuthenticated(correlationID, "invalid credentials")
	}
	if user.Locked {
		return "", nil, domain.NewNotAuthenticated(correlationID, "user is locked")
	}

	identity, ok := user.Identities[domain.IdentityKindUsernamePassword].(domain.UsernamePasswordIdentity)
	if !ok {
		return "", nil, domain.NewNotAuthenticated(correlationID, "invalid credentials")
	}
	if s.comparer.Compare(identity.PasswordHash, password) != nil {
		return "", nil, domain.NewNotAuthenticated(correlationID, "invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, domain.NewStorageUnavailable(correlationID, err)
	}
	return token, user, nil
}

// IssueDeviceToken mints a long-lived token a controller presents on every
// request. Only admins may provision controllers.
func (s *AuthService) IssueDeviceToken(ctx context.Context, actor domain.Actor, correlationID, deviceID string) (string, error) {
	if err := requireManage(actor, correlationID, deviceID); err != nil {
		return "", err
	}

	if _, err := s.devices.GetByID(ctx, deviceID); err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":  deviceID,
		"role": "device",
		"exp":  time.Now().Add(deviceTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	memberQuals := make([]string, 0, len(user.MemberQualifications))
	for q := range user.MemberQualifications {
		memberQuals = append(memberQuals, q)
	}
	instructorQuals := make([]string, 0, len(user.InstructorQualifications))
	for q := range user.InstructorQualifications {
		instructorQuals = append(instructorQuals, q)
	}

	claims := jwt.MapClaims{
		"sub":                       user.ID,
		"is_admin":                  user.IsAdmin,
		"member_qualifications":     memberQuals,
		"instructor_qualifications": instructorQuals,
		"exp":                       time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
