package ports

import (
	"context"

	"github.com/makerhive/access-system/internal/core/domain"
)

// The command services implement one use case per method. The canonical shape
// is: resolve the actor's permission, load the aggregate, invoke the pure
// mutation, append the derived event, publish it. Each failure short-circuits
// and is surfaced to the caller unchanged. Methods taking a triggering event
// instead of an actor are cascade reactions: they run under system authority
// and stamp the original event's actor id and correlation id onto the events
// they derive.

// AddUserInput carries the data needed to create a user.
type AddUserInput struct {
	FirstName string
	LastName  string
	WikiName  string
}

// PersonalInformationUpdate is a partial update of a user's core attributes.
type PersonalInformationUpdate struct {
	FirstName domain.Changeable[string]
	LastName  domain.Changeable[string]
	WikiName  domain.Changeable[string]
}

// LockStateUpdate is a partial update of a user's lock flag and notes.
type LockStateUpdate struct {
	Locked domain.Changeable[bool]
	Notes  domain.Changeable[string]
}

// UserService covers all user commands and admin-side reads.
type UserService interface {
	AddUser(ctx context.Context, actor domain.Actor, correlationID string, input AddUserInput) (string, error)
	ChangePersonalInformation(ctx context.Context, actor domain.Actor, correlationID, userID string, update PersonalInformationUpdate) error
	ChangeLockState(ctx context.Context, actor domain.Actor, correlationID, userID string, update LockStateUpdate) error
	ChangeIsAdmin(ctx context.Context, actor domain.Actor, correlationID, userID string, isAdmin bool) error

	AddMemberQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error
	RemoveMemberQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error
	AddInstructorQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error
	RemoveInstructorQualification(ctx context.Context, actor domain.Actor, correlationID, userID, qualificationID string) error

	AddUsernamePasswordIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, username, password string) error
	AddCardIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, cardID, cardSecret string) error
	AddPhoneNrIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, phoneNr string) error
	AddPinIdentity(ctx context.Context, actor domain.Actor, correlationID, userID, pin string) error
	AddWebauthnIdentity(ctx context.Context, actor domain.Actor, correlationID, userID string, credentialID []byte) error
	RemoveIdentity(ctx context.Context, actor domain.Actor, correlationID, userID string, kind domain.IdentityKind) error

	DeleteUser(ctx context.Context, actor domain.Actor, correlationID, userID string) error

	GetUser(ctx context.Context, actor domain.Actor, correlationID, userID string) (*domain.User, error)
	GetAllUsers(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.User, error)

	// Cascade reactions to QualificationDeleted.
	RemoveMemberQualificationOnQualificationDeleted(ctx context.Context, cause domain.QualificationDeleted, userID string) error
	RemoveInstructorQualificationOnQualificationDeleted(ctx context.Context, cause domain.QualificationDeleted, userID string) error
}

// AddDeviceInput carries the data needed to create a device.
type AddDeviceInput struct {
	Name             string
	Background       string
	BackupBackendURL string
}

// DeviceDetailsUpdate is a partial update of a device's attributes.
type DeviceDetailsUpdate struct {
	Name             domain.Changeable[string]
	Background       domain.Changeable[string]
	BackupBackendURL domain.Changeable[string]
}

// AttachedToolConfiguration describes one pin of a device configuration.
type AttachedToolConfiguration struct {
	Pin              int
	ToolID           string
	ToolName         string
	ToolType         domain.ToolType
	TimeLimitSeconds int
	Enabled          bool
}

// DeviceConfiguration is the view a controller fetches for itself.
type DeviceConfiguration struct {
	DeviceID         string
	Name             string
	Background       string
	BackupBackendURL string
	AttachedTools    []AttachedToolConfiguration
}

// DeviceService covers all device commands, reads, and the tool cascade.
type DeviceService interface {
	AddDevice(ctx context.Context, actor domain.Actor, correlationID string, input AddDeviceInput) (string, error)
	ChangeDeviceDetails(ctx context.Context, actor domain.Actor, correlationID, deviceID string, update DeviceDetailsUpdate) error
	AttachTool(ctx context.Context, actor domain.Actor, correlationID, deviceID string, pin int, toolID string) error
	DetachTool(ctx context.Context, actor domain.Actor, correlationID, deviceID string, pin int) error
	DeleteDevice(ctx context.Context, actor domain.Actor, correlationID, deviceID string) error

	GetDevice(ctx context.Context, actor domain.Actor, correlationID, deviceID string) (*domain.Device, error)
	GetAllDevices(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.Device, error)
	GetConfiguration(ctx context.Context, actor domain.Actor, correlationID, deviceID string) (*DeviceConfiguration, error)

	// Cascade reaction to ToolDeleted.
	DetachToolOnToolDeleted(ctx context.Context, cause domain.ToolDeleted, deviceID string, pin int) error
}

// AddToolInput carries the data needed to create a tool.
type AddToolInput struct {
	Name                   string
	Type                   domain.ToolType
	TimeLimitSeconds       int
	RequiredQualifications []string
	Enabled                bool
}

// ToolDetailsUpdate is a partial update of a tool's attributes.
type ToolDetailsUpdate struct {
	Name                   domain.Changeable[string]
	Type                   domain.Changeable[domain.ToolType]
	TimeLimitSeconds       domain.Changeable[int]
	RequiredQualifications domain.Changeable[[]string]
	Enabled                domain.Changeable[bool]
}

// ToolService covers all tool commands and reads.
type ToolService interface {
	AddTool(ctx context.Context, actor domain.Actor, correlationID string, input AddToolInput) (string, error)
	ChangeToolDetails(ctx context.Context, actor domain.Actor, correlationID, toolID string, update ToolDetailsUpdate) error
	DeleteTool(ctx context.Context, actor domain.Actor, correlationID, toolID string) error

	GetTool(ctx context.Context, actor domain.Actor, correlationID, toolID string) (*domain.Tool, error)
	GetAllTools(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.Tool, error)
}

// AddQualificationInput carries the data needed to create a qualification.
type AddQualificationInput struct {
	Name        string
	Description string
	Colour      string
	OrderNr     int
}

// QualificationDetailsUpdate is a partial update of a qualification.
type QualificationDetailsUpdate struct {
	Name        domain.Changeable[string]
	Description domain.Changeable[string]
	Colour      domain.Changeable[string]
	OrderNr     domain.Changeable[int]
}

// QualificationService covers all qualification commands and reads.
type QualificationService interface {
	AddQualification(ctx context.Context, actor domain.Actor, correlationID string, input AddQualificationInput) (string, error)
	ChangeQualificationDetails(ctx context.Context, actor domain.Actor, correlationID, qualificationID string, update QualificationDetailsUpdate) error
	DeleteQualification(ctx context.Context, actor domain.Actor, correlationID, qualificationID string) error

	GetQualification(ctx context.Context, actor domain.Actor, correlationID, qualificationID string) (*domain.Qualification, error)
	GetAllQualifications(ctx context.Context, actor domain.Actor, correlationID string) ([]*domain.Qualification, error)
}

// AuthService authenticates username/password credentials and issues tokens
// the transport layer turns back into actors.
type AuthService interface {
	Login(ctx context.Context, correlationID, username, password string) (string, *domain.User, error)
	IssueDeviceToken(ctx context.Context, actor domain.Actor, correlationID, deviceID string) (string, error)
}
