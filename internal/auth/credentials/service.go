package credentials

import (
	"context"
	"errors"

	"hirehub/internal/logger"

	"github.com/samber/oops"
)

var (
	ErrAlreadyRegistered = errors.New("account already exists")
	ErrUnknownEmail      = errors.New("no account for email")
	ErrPasswordMismatch  = errors.New("password does not match")
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type Options struct {
	// AllowAdminSignup lets a registration form ask for the admin role.
	AllowAdminSignup bool
}

type Service struct {
	store  Store
	hasher Hasher
	opts   Options
}

func NewService(store Store, hasher Hasher, opts Options) *Service {
	return &Service{store: store, hasher: hasher, opts: opts}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	// 1. Existing email
	_, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrAlreadyRegistered
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	// 2. Role
	role := s.resolveRole(in.Role)

	// 3. Hash + construct
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := NewUser(in.Username, in.Email, hash, role)
	if err != nil {
		return nil, err
	}

	// 4. Insert; the unique constraint catches concurrent registrations
	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) resolveRole(requested string) Role {
	role, err := ParseRole(requested)
	if err != nil {
		logger.Warn("registration requested unknown role, using default", map[string]any{
			"requested": requested,
		})
		return RoleUser
	}

	if role == RoleAdmin && !s.opts.AllowAdminSignup {
		logger.Warn("admin signup disabled, using default role", nil)
		return RoleUser
	}

	return role
}

// Authenticate distinguishes an unknown email from a wrong password so the
// caller can route each to a different page.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownEmail
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("LOGIN_VERIFY_FAILED").
			With("user_id", user.ID).
			Wrap(err)
	}
	if !ok {
		return nil, ErrPasswordMismatch
	}

	return user, nil
}
