package user

import (
	"errors"
	"regexp"
	"time"
)

// loginPattern defines the valid format for logins:
// latin and cyrillic letters, digits, hyphens, underscores, at signs.
var loginPattern = regexp.MustCompile(`^[a-zA-Zа-яА-Я0-9@_-]+$`)

// passwordPattern defines the valid characters for passwords:
// latin letters, digits, hyphens, underscores, dots.
var passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Login and password length bounds.
const (
	minLoginLength    = 5
	maxLoginLength    = 255
	minPasswordLength = 5
	maxPasswordLength = 20
)

// IsValidLogin checks if a login meets format requirements.
// Logins must be 5-255 characters drawn from the allowed alphabet.
func IsValidLogin(login string) bool {
	n := len([]rune(login))
	return n >= minLoginLength && n <= maxLoginLength && loginPattern.MatchString(login)
}

// IsValidPassword checks if a plaintext password meets format requirements.
// Passwords must be 5-20 characters drawn from the allowed alphabet.
func IsValidPassword(password string) bool {
	n := len(password)
	return n >= minPasswordLength && n <= maxPasswordLength && passwordPattern.MatchString(password)
}

// User represents a registered account.
//
// Role is resolved via role_id and may be nil for users whose role was
// deleted (roles are removed with ON DELETE SET NULL).
type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"` // never serialised
	FullName     string    `json:"full_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	City         string    `json:"city,omitempty"`
	Address      string    `json:"address,omitempty"`
	ZipCode      string    `json:"zip_code,omitempty"`
	Role         *Role     `json:"role,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role represents an authorisation tier. Permissions attach to roles,
// never directly to users.
type Role struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Permission represents a named capability that can be attached to roles.
type Permission struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// PermissionUserManagement guards administrative user operations:
// create, update, deactivate, and directory search.
const PermissionUserManagement = "user_management"

// Sentinel errors for user operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserInactive    = errors.New("user account is inactive")
	ErrLoginExists     = errors.New("login already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleExists      = errors.New("role already exists")
	ErrInvalidLogin    = errors.New("login does not meet format requirements")
	ErrInvalidPassword = errors.New("password does not meet format requirements")
	ErrInvalidSortKey  = errors.New("invalid sort key")
)
