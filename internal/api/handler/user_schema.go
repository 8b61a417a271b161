package handler

import (
	"sort"

	"github.com/makerhive/access-system/internal/core/domain"
	"github.com/makerhive/access-system/internal/core/ports"
)

// --- Request / Response types ---

type createUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	WikiName  string `json:"wiki_name"  validate:"required"`
}

// updateUserRequest is a partial update: absent fields stay as they are.
type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	WikiName  *string `json:"wiki_name"`
}

func (r updateUserRequest) toUpdate() ports.PersonalInformationUpdate {
	return ports.PersonalInformationUpdate{
		FirstName: changeable(r.FirstName),
		LastName:  changeable(r.LastName),
		WikiName:  changeable(r.WikiName),
	}
}

// updateLockStateRequest is a partial update of the lock flag and notes.
type updateLockStateRequest struct {
	Locked *bool   `json:"locked"`
	Notes  *string `json:"notes"`
}

func (r updateLockStateRequest) toUpdate() ports.LockStateUpdate {
	return ports.LockStateUpdate{
		Locked: changeable(r.Locked),
		Notes:  changeable(r.Notes),
	}
}

type updateIsAdminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

type addUsernamePasswordIdentityRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type addCardIdentityRequest struct {
	CardID     string `json:"card_id"     validate:"required"`
	CardSecret string `json:"card_secret" validate:"required"`
}

type addPhoneNrIdentityRequest struct {
	PhoneNr string `json:"phone_nr" validate:"required,e164"`
}

type addPinIdentityRequest struct {
	Pin string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

type addWebauthnIdentityRequest struct {
	// CredentialID is base64-encoded by encoding/json on the wire.
	CredentialID []byte `json:"credential_id" validate:"required"`
}

// identityResponse exposes which credential kinds a user holds plus their
// non-secret attributes. Secrets never leave the core.
type identityResponse struct {
	Kind     string `json:"kind"`
	Username string `json:"username,omitempty"`
	CardID   string `json:"card_id,omitempty"`
	PhoneNr  string `json:"phone_nr,omitempty"`
}

type userResponse struct {
	ID                       string             `json:"id"`
	FirstName                string             `json:"first_name"`
	LastName                 string             `json:"last_name"`
	WikiName                 string             `json:"wiki_name"`
	Locked                   bool               `json:"locked"`
	Notes                    string             `json:"notes"`
	IsAdmin                  bool               `json:"is_admin"`
	MemberQualifications     []string           `json:"member_qualifications"`
	InstructorQualifications []string           `json:"instructor_qualifications"`
	Identities               []identityResponse `json:"identities"`
}

func toUserResponse(u *domain.User) userResponse {
	identities := make([]identityResponse, 0, len(u.Identities))
	for _, identity := range u.Identities {
		item := identityResponse{Kind: string(identity.Kind())}
		switch id := identity.(type) {
		case domain.UsernamePasswordIdentity:
			item.Username = id.Username
		case domain.CardIdentity:
			item.CardID = id.CardID
		case domain.PhoneNrIdentity:
			item.PhoneNr = id.PhoneNr
		}
		identities = append(identities, item)
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].Kind < identities[j].Kind })

	return userResponse{
		ID:                       u.ID,
		FirstName:                u.FirstName,
		LastName:                 u.LastName,
		WikiName:                 u.WikiName,
		Locked:                   u.Locked,
		Notes:                    u.Notes,
		IsAdmin:                  u.IsAdmin,
		MemberQualifications:     sortedSet(u.MemberQualifications),
		InstructorQualifications: sortedSet(u.InstructorQualifications),
		Identities:               identities,
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
