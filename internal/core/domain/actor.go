package domain

// Actor identifies who is performing a command. It is a closed sum: the five
// variants below are the only implementations, so permission predicates can
// switch over them exhaustively.
type Actor interface {
	// ActorID is the identity recorded on events this actor causes.
	ActorID() string
	isActor()
}

// SystemActorID is the actor id recorded on events raised by the system
// itself, e.g. cascade reactions re-stamped with the triggering actor.
const SystemActorID = "system"

// SystemActor represents the system acting on its own authority, used for
// cross-aggregate cascade reactions.
type SystemActor struct{}

func (SystemActor) ActorID() string { return SystemActorID }
func (SystemActor) isActor()        {}

// Admin is a user with the admin flag set.
type Admin struct {
	UserID string
}

func (a Admin) ActorID() string { return a.UserID }
func (Admin) isActor()          {}

// Instructor is a user holding at least one instructor qualification. It also
// carries the member qualifications of the underlying user.
type Instructor struct {
	UserID                   string
	MemberQualifications     map[string]struct{}
	InstructorQualifications map[string]struct{}
}

func (i Instructor) ActorID() string { return i.UserID }
func (Instructor) isActor()          {}

// Member is a regular workshop user.
type Member struct {
	UserID               string
	MemberQualifications map[string]struct{}
}

func (m Member) ActorID() string { return m.UserID }
func (Member) isActor()          {}

// DeviceActor is a controller acting for itself or on behalf of the member
// currently authenticated at it.
type DeviceActor struct {
	DeviceID   string
	OnBehalfOf *Member
}

func (d DeviceActor) ActorID() string { return d.DeviceID }
func (DeviceActor) isActor()          {}

// CanManage reports whether the actor may create, reconfigure or delete
// aggregates and change lock/admin flags. Admin-only, plus the system itself.
func CanManage(actor Actor) bool {
	switch actor.(type) {
	case Admin, SystemActor:
		return true
	case Instructor, Member, DeviceActor:
		return false
	}
	return false
}

// CanGrantMemberQualification reports whether the actor may add the given
// member qualification to a user: an instructor holding that qualification,
// an admin, or the system.
func CanGrantMemberQualification(actor Actor, qualificationID string) bool {
	switch a := actor.(type) {
	case Admin, SystemActor:
		return true
	case Instructor:
		_, ok := a.InstructorQualifications[qualificationID]
		return ok
	case Member, DeviceActor:
		return false
	}
	return false
}

// CanRevokeMemberQualification mirrors CanGrantMemberQualification; removal
// follows the same rule.
func CanRevokeMemberQualification(actor Actor, qualificationID string) bool {
	return CanGrantMemberQualification(actor, qualificationID)
}

// CanChangeIdentity reports whether the actor may add or remove identity
// credentials of the user with userID: an admin, the user themself, the
// system, or a device acting on behalf of that user.
func CanChangeIdentity(actor Actor, userID string) bool {
	switch a := actor.(type) {
	case Admin, SystemActor:
		return true
	case Instructor:
		return a.UserID == userID
	case Member:
		return a.UserID == userID
	case DeviceActor:
		return a.OnBehalfOf != nil && a.OnBehalfOf.UserID == userID
	}
	return false
}

// CanReadDeviceConfiguration reports whether the actor may read a device's
// pin/tool configuration: the device itself or an admin.
func CanReadDeviceConfiguration(actor Actor, deviceID string) bool {
	switch a := actor.(type) {
	case Admin, SystemActor:
		return true
	case DeviceActor:
		return a.DeviceID == deviceID
	case Instructor, Member:
		return false
	}
	return false
}
