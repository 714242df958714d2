// Package auth implements the admin session: the login flow, the role
// allow-list and the persistence of the session token and role.
package auth

import (
	"context"
	"errors"
	"strings"
)

// Storage keys for the two persisted session values.
const (
	KeyToken = "token"
	KeyRole  = "role"
)

// Roles allowed to use the dashboard.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

var (
	// ErrRoleNotAllowed is returned when the backend accepted the credentials
	// but issued a role outside the allow-list.
	ErrRoleNotAllowed = errors.New("auth: role not allowed")
	// ErrMissingToken is returned when the backend answered without a token.
	ErrMissingToken = errors.New("auth: no token issued")
)

// Session is the authenticated-user context carried into every backend call.
type Session struct {
	Token string
	Role  string
}

// Authenticated reports whether s holds a token and an allowed role.
func (s Session) Authenticated() bool {
	return s.Token != "" && RoleAllowed(s.Role)
}

// RoleAllowed reports whether role may sign in to the dashboard.
func RoleAllowed(role string) bool {
	switch normalizeRole(role) {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// Credentials is what the backend returns for a successful credential check.
type Credentials struct {
	Token string
	Role  string
}

// Authenticator exchanges an email and password for credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Credentials, error)
}

// Storage persists the session token and role between requests.
type Storage interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}
