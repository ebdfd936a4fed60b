package middleware

import (
	"net/http"

	"hirehub/internal/session"
)

// LoginPath is where unauthenticated requests to guarded routes are sent.
const LoginPath = "/login"

type SessionMiddleware struct {
	Manager *session.Manager
}

func NewSessionMiddleware(manager *session.Manager) *SessionMiddleware {
	return &SessionMiddleware{Manager: manager}
}

// Load resolves the session once per request and attaches it to the context.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := m.Manager.Load(r)
		ctx := session.NewContext(r.Context(), state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth lets authenticated sessions through unchanged and redirects
// everything else to the login page without running next.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).IsAuthenticated {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
