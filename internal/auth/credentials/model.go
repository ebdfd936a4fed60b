package credentials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrInvalidRole is returned for a role outside the user/admin enum.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole maps form input to a Role. An empty value means the default
// role; matching is exact, so "Admin" is not a role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleUser, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ValidationError reports a field that failed construction checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// User is a stored account. PasswordHash never holds plaintext.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Snapshot is the denormalized identity copied into a session.
type Snapshot struct {
	ID       string
	Username string
	Role     Role
}

// NewUser builds a validated User with a fresh ID.
func NewUser(username, email, passwordHash string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "required"}
	}
	if email == "" {
		return nil, &ValidationError{Field: "email", Reason: "required"}
	}
	if passwordHash == "" {
		return nil, &ValidationError{Field: "password", Reason: "required"}
	}
	if !role.Valid() {
		return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("%q is not one of user, admin", role)}
	}

	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{ID: u.ID, Username: u.Username, Role: u.Role}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
