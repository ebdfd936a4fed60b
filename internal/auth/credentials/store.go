package credentials

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrDuplicateKey = errors.New("username or email already exists")
)

// Store persists user accounts. Username and email are unique.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, u *User) error
}
