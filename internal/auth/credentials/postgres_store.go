package credentials

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on the users table.
type PostgresStore struct {
	db pool
}

func NewPostgresStore(db pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByEmail looks the user up case-insensitively.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var (
		u    User
		role string
	)

	err := s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, NormalizeEmail(email)).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find user by email").
			Wrap(err)
	}

	u.Role = Role(role)
	return &u, nil
}

func (s *PostgresStore) Insert(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.CreatedAt,
	)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("USER_DUPLICATE").
			With("constraint", pgErr.ConstraintName).
			Wrap(ErrDuplicateKey)
	}

	return oops.Code("USER_INSERT_FAILED").
		With("operation", "insert user").
		With("username", u.Username).
		Wrap(err)
}
