package auth

import (
	"errors"
	"regexp"
	"slices"
	"time"
)

// usernamePattern allows alphanumerics, dots, hyphens and underscores.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role represents an authorisation tier.
type Role string

const (
	// RoleViewer can read settings and the service registry.
	RoleViewer Role = "viewer"

	// RoleOperator can also change setting values and use the tools.
	RoleOperator Role = "operator"

	// RoleAdmin can also reload the schema and manage users.
	RoleAdmin Role = "admin"
)

// ValidRoles lists every role in ascending privilege.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	return slices.Contains(ValidRoles, r)
}

// User is an account that can log in to the API.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUser        = errors.New("invalid user")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrMalformedHash      = errors.New("malformed password hash")
)
