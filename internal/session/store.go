package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/oops"
)

var (
	// ErrDestroy wraps any failure of the backing store while deleting a session.
	ErrDestroy = errors.New("session: destroy failed")

	ErrMissingID = errors.New("session: missing session id")
)

// UserSnapshot is the identity copied into a session at login. It is not
// kept in sync with the users table.
type UserSnapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// State is the server-side session record. The zero value is an
// unauthenticated session that has not been persisted yet.
type State struct {
	ID              string        `json:"-"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *UserSnapshot `json:"user,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	ExpiresAt       time.Time     `json:"expiresAt"`
}

// Authenticate returns a copy of s marked as logged in as u.
func (s State) Authenticate(u UserSnapshot) State {
	s.IsAuthenticated = true
	s.User = &u
	return s
}

// Role returns the snapshot role, or "" when nobody is logged in.
func (s State) Role() string {
	if !s.IsAuthenticated || s.User == nil {
		return ""
	}
	return s.User.Role
}

// Store defines how sessions are persisted. Implementations must be
// durable; Save replaces the whole record (last write wins).
type Store interface {
	// Get returns (nil, nil) when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, s State) error
	Destroy(ctx context.Context, id string) error
}

// encode renders s as the document both stores persist. The ID is the
// record key and is not part of the document.
func encode(s State) ([]byte, error) {
	if s.ID == "" {
		return nil, ErrMissingID
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}
	return data, nil
}

func decode(id string, data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, oops.Code("SESSION_DECODE_FAILED").With("session_id", id).Wrap(err)
	}
	s.ID = id
	return &s, nil
}
