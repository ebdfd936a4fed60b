package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"hirehub/internal/logger"

	"github.com/samber/oops"
)

const idBytes = 32 // 256 bits

// GenerateID returns an opaque, URL-safe session identifier.
func GenerateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SESSION_ID_FAILED").Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Manager connects the cookie transport to a Store. Handlers never mutate
// a State in place; they pass the next value to Commit or Renew.
type Manager struct {
	store Store
	codec *CookieCodec
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, codec *CookieCodec, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		codec: codec,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Load resolves the request's cookie against the store. Any failure yields
// an unauthenticated State. When the store lookup itself fails the
// cookie's ID is kept so Destroy still reaches the record.
func (m *Manager) Load(r *http.Request) State {
	id, ok := m.codec.Read(r)
	if !ok {
		return State{}
	}

	s, err := m.store.Get(r.Context(), id)
	if err != nil {
		logger.Error("session lookup failed", map[string]any{
			"cookie": m.codec.Name(),
			"error":  err.Error(),
		})
		return State{ID: id}
	}
	if s == nil {
		return State{}
	}
	return *s
}

// Commit persists s, assigning an ID on first write and sliding the expiry,
// then writes the cookie.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s State) (State, error) {
	now := m.now()

	if s.ID == "" {
		id, err := GenerateID()
		if err != nil {
			return State{}, err
		}
		s.ID = id
		s.CreatedAt = now
	}
	s.ExpiresAt = now.Add(m.ttl)

	if err := m.store.Save(ctx, s); err != nil {
		return State{}, err
	}
	if err := m.codec.Set(w, s.ID, s.ExpiresAt); err != nil {
		return State{}, err
	}
	return s, nil
}

// Renew commits next under a fresh ID and drops the record behind prev,
// so an identifier seen before login is useless afterwards.
func (m *Manager) Renew(ctx context.Context, w http.ResponseWriter, prev, next State) (State, error) {
	next.ID = ""
	next.CreatedAt = time.Time{}

	fresh, err := m.Commit(ctx, w, next)
	if err != nil {
		return State{}, err
	}

	if prev.ID != "" {
		if err := m.store.Destroy(ctx, prev.ID); err != nil {
			logger.Warn("failed to drop pre-login session", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return fresh, nil
}

// Destroy deletes the record and clears the cookie. A State that was
// never persisted only has its cookie cleared.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s State) error {
	if s.ID != "" {
		if err := m.store.Destroy(ctx, s.ID); err != nil {
			if !errors.Is(err, ErrDestroy) {
				err = errors.Join(ErrDestroy, err)
			}
			return err
		}
	}
	m.codec.Clear(w)
	return nil
}
