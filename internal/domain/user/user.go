// Package user contains the identity model of the authenticated platform user.
// This is the profile the backend returns from the /auth/me endpoint; the client
// never derives or mutates it locally.
package user

import (
	"strings"
	"time"
)

// Role represents the user's role on the platform.
type Role string

const (
	// RoleStudent is the default role assigned on self-registration.
	RoleStudent Role = "student"
	// RoleUser is a regular platform user.
	RoleUser Role = "user"
	// RoleAdmin can manage shared content.
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one the platform issues.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Identity is the authenticated user's profile.
//
// An Identity exists only while a credential is present: it is produced by a
// successful hydration call and cleared together with the credential on logout.
type Identity struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// DisplayName returns the name to show in the terminal UI.
func (i *Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Username); name != "" {
		return name
	}
	return i.Email
}

// IsAdmin reports whether the user can manage shared content.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
