package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const redisKeyPrefix = "session:"

// RedisStore keeps one JSON document per session under "session:<id>".
// Redis expires the key at the session's ExpiresAt.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}

	s, err := decode(id, data)
	if err != nil {
		return nil, err
	}
	// key TTL and document can disagree by a clock tick
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return s, nil
}

// Save writes s with a TTL up to ExpiresAt. A state that has already
// expired is deleted instead.
func (r *RedisStore) Save(ctx context.Context, s State) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	key := redisKeyPrefix + s.ID
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		err = r.client.Del(ctx, key).Err()
	} else {
		err = r.client.Set(ctx, key, data, ttl).Err()
	}
	if err != nil {
		return oops.Code("SESSION_SAVE_FAILED").Wrap(err)
	}
	return nil
}

func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return oops.Code("SESSION_DESTROY_FAILED").Wrap(fmt.Errorf("%w: %w", ErrDestroy, err))
	}
	return nil
}
