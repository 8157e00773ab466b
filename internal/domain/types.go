package domain

import "strings"

// ID is used across domain entities.
type ID = int64

// Role of an authenticated user.
type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a role string. The second result is false for
// anything outside the known set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return r, true
	}
	return "", false
}

// Identity is the authenticated caller of a single request.
type Identity struct {
	ID   ID
	Role Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// RequireOwner allows a mutation when who owns the record or is an admin.
func RequireOwner(owner ID, who Identity, msg string) error {
	if owner == who.ID || who.IsAdmin() {
		return nil
	}
	if msg == "" {
		msg = "User is not authorized to modify this resource"
	}
	return ForbiddenError{Msg: msg}
}
