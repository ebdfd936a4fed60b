package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the sessions table as JSONB documents.
// Expired rows are invisible to Get and removed by PurgeExpired.
type PostgresStore struct {
	db pool
}

func NewPostgresStore(db pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*State, error) {
	var data []byte
	err := p.db.QueryRow(ctx, `
		SELECT data
		FROM sessions
		WHERE id = $1
		  AND expires_at > NOW()
	`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}

	return decode(id, data)
}

func (p *PostgresStore) Save(ctx context.Context, s State) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO sessions (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data,
		    expires_at = EXCLUDED.expires_at
	`, s.ID, data, s.ExpiresAt)
	if err != nil {
		return oops.Code("SESSION_SAVE_FAILED").Wrap(err)
	}
	return nil
}

func (p *PostgresStore) Destroy(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return oops.Code("SESSION_DESTROY_FAILED").Wrap(fmt.Errorf("%w: %w", ErrDestroy, err))
	}
	return nil
}

// PurgeExpired deletes expired rows and reports how many went.
func (p *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
