package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"hirehub/internal/auth/credentials"
	"hirehub/internal/auth/handler"
	"hirehub/internal/logger"
	"hirehub/internal/metrics"
	"hirehub/internal/middleware"
	"hirehub/internal/session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
	goleak.VerifyTestMain(m)
}

type userStore struct {
	mu      sync.Mutex
	users   map[string]*credentials.User
	failing error
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*credentials.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return nil, s.failing
	}
	u, ok := s.users[credentials.NormalizeEmail(email)]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) Insert(_ context.Context, u *credentials.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return credentials.ErrDuplicateKey
		}
	}
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

type sessionStore struct {
	mu         sync.Mutex
	records    map[string]session.State
	getErr     error
	saveErr    error
	destroyErr error
}

func (s *sessionStore) Get(_ context.Context, id string) (*session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	st, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *sessionStore) Save(_ context.Context, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[st.ID] = st
	return nil
}

func (s *sessionStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyErr != nil {
		return s.destroyErr
	}
	delete(s.records, id)
	return nil
}

func (s *sessionStore) authenticated() []session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []session.State
	for _, st := range s.records {
		if st.IsAuthenticated {
			out = append(out, st)
		}
	}
	return out
}

type env struct {
	router   *gin.Engine
	users    *userStore
	sessions *sessionStore
	metrics  *metrics.Metrics
	jar      []*http.Cookie
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		users:    &userStore{users: map[string]*credentials.User{}},
		sessions: &sessionStore{records: map[string]session.State{}},
		metrics:  metrics.New(),
	}

	svc := credentials.NewService(e.users, credentials.NewBcryptHasher(bcrypt.MinCost), credentials.Options{AllowAdminSignup: true})
	codec := session.NewCookieCodec([]byte(strings.Repeat("k", 32)), time.Hour, session.CookieOptions{})
	manager := session.NewManager(e.sessions, codec, time.Hour)

	r := gin.New()
	r.Use(middleware.Gin(middleware.NewSessionMiddleware(manager).Load))
	handler.NewHandler(svc, manager, e.metrics).RegisterRoutes(r)

	guarded := r.Group("/")
	guarded.Use(middleware.GinRequireAuth())
	guarded.GET("/homeuser", func(c *gin.Context) {
		c.String(http.StatusOK, "home of "+session.FromContext(c.Request.Context()).User.Username)
	})

	e.router = r
	return e
}

// do sends a request carrying the env's cookies and keeps whatever the
// server sets, like a browser would.
func (e *env) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range e.jar {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		e.setCookie(c)
	}
	return rec
}

func (e *env) setCookie(c *http.Cookie) {
	kept := e.jar[:0]
	for _, existing := range e.jar {
		if existing.Name != c.Name {
			kept = append(kept, existing)
		}
	}
	if c.MaxAge >= 0 {
		kept = append(kept, c)
	}
	e.jar = kept
}

func (e *env) register(username, email, password, role string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, "/register", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
		"usertype": {role},
	})
}

func (e *env) login(email, password string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, location, rec.Header().Get("Location"))
}

func TestRegister(t *testing.T) {
	t.Run("fresh account redirects to login", func(t *testing.T) {
		e := newEnv(t)

		assertRedirect(t, e.register("alice", "a@x.com", "secret1", ""), "/login")

		stored, err := e.users.FindByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", stored.PasswordHash)
		assert.Equal(t, credentials.RoleUser, stored.Role)
		assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.AuthEvents.WithLabelValues("register", "success")))
	})

	t.Run("duplicate email redirects back to register and keeps one record", func(t *testing.T) {
		e := newEnv(t)

		assertRedirect(t, e.register("alice", "a@x.com", "secret1", ""), "/login")
		assertRedirect(t, e.register("alice2", "a@x.com", "other", ""), "/register")
		assert.Len(t, e.users.users, 1)
	})

	t.Run("duplicate username redirects back to register", func(t *testing.T) {
		e := newEnv(t)

		assertRedirect(t, e.register("alice", "a@x.com", "secret1", ""), "/login")
		assertRedirect(t, e.register("alice", "b@x.com", "secret1", ""), "/register")
		assert.Len(t, e.users.users, 1)
	})

	t.Run("missing username redirects back to register", func(t *testing.T) {
		e := newEnv(t)
		assertRedirect(t, e.register("", "a@x.com", "secret1", ""), "/register")
		assert.Empty(t, e.users.users)
	})

	t.Run("role is taken from usertype or role", func(t *testing.T) {
		e := newEnv(t)
		assertRedirect(t, e.register("root", "root@x.com", "pw", "admin"), "/login")
		rec := e.do(http.MethodPost, "/register", url.Values{
			"username": {"ops"}, "email": {"ops@x.com"}, "password": {"pw"}, "role": {"admin"},
		})
		assertRedirect(t, rec, "/login")

		for _, email := range []string{"root@x.com", "ops@x.com"} {
			u, err := e.users.FindByEmail(context.Background(), email)
			require.NoError(t, err)
			assert.Equal(t, credentials.RoleAdmin, u.Role)
		}
	})

	t.Run("JSON body is accepted", func(t *testing.T) {
		e := newEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"username":"json","email":"j@x.com","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)

		assertRedirect(t, rec, "/login")
	})

	t.Run("store failure is a bare 500", func(t *testing.T) {
		e := newEnv(t)
		e.users.failing = errors.New("pq: connection refused at 10.0.0.5")

		rec := e.register("alice", "a@x.com", "secret1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Server error", rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})
}

func TestLogin(t *testing.T) {
	t.Run("user lands on the user home and stays logged in", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")

		assertRedirect(t, e.login("a@x.com", "secret1"), "/homeuser")

		authed := e.sessions.authenticated()
		require.Len(t, authed, 1)
		assert.Equal(t, "alice", authed[0].User.Username)
		assert.Equal(t, "user", authed[0].User.Role)

		rec := e.do(http.MethodGet, "/homeuser", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "home of alice", rec.Body.String())
	})

	t.Run("admin lands on the admin page", func(t *testing.T) {
		e := newEnv(t)
		e.register("root", "root@x.com", "pw", "admin")

		assertRedirect(t, e.login("root@x.com", "pw"), "/admin")
	})

	t.Run("unknown email redirects to register", func(t *testing.T) {
		e := newEnv(t)

		rec := e.login("nobody@x.com", "secret1")
		assertRedirect(t, rec, "/register")
		assert.Empty(t, e.sessions.authenticated())
	})

	t.Run("wrong password redirects to login and leaves the session alone", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")

		assertRedirect(t, e.login("a@x.com", "wrong"), "/login")
		assert.Empty(t, e.sessions.authenticated())

		assertRedirect(t, e.do(http.MethodGet, "/homeuser", nil), "/login")
	})

	t.Run("login replaces the session id", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")
		e.login("a@x.com", "secret1")
		first := e.jar[0].Value

		e.login("a@x.com", "secret1")
		assert.NotEqual(t, first, e.jar[0].Value)
		assert.Len(t, e.sessions.authenticated(), 1)
	})

	t.Run("session save failure is a 500", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")
		e.sessions.saveErr = errors.New("redis down")

		rec := e.login("a@x.com", "secret1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Server error", rec.Body.String())
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		e := newEnv(t)
		e.users.failing = errors.New("db down")

		rec := e.login("a@x.com", "secret1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Run("destroys the session and guards apply again", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")
		e.login("a@x.com", "secret1")
		require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/homeuser", nil).Code)

		assertRedirect(t, e.do(http.MethodGet, "/logout", nil), "/")
		assert.Empty(t, e.sessions.authenticated())

		assertRedirect(t, e.do(http.MethodGet, "/homeuser", nil), "/login")
	})

	t.Run("replayed cookie after logout is rejected", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")
		e.login("a@x.com", "secret1")
		stolen := append([]*http.Cookie(nil), e.jar...)

		e.do(http.MethodGet, "/logout", nil)
		e.jar = stolen

		assertRedirect(t, e.do(http.MethodGet, "/homeuser", nil), "/login")
	})

	t.Run("without a session still redirects home", func(t *testing.T) {
		e := newEnv(t)
		assertRedirect(t, e.do(http.MethodGet, "/logout", nil), "/")
	})

	t.Run("destroy failure is a 500", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")
		e.login("a@x.com", "secret1")
		e.sessions.destroyErr = errors.New("redis down")

		rec := e.do(http.MethodGet, "/logout", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Logout failed", rec.Body.String())
	})

	t.Run("unreachable store fails the logout and keeps the record", func(t *testing.T) {
		e := newEnv(t)
		e.register("alice", "a@x.com", "secret1", "")
		e.login("a@x.com", "secret1")
		e.sessions.getErr = errors.New("redis down")
		e.sessions.destroyErr = errors.New("redis down")

		rec := e.do(http.MethodGet, "/logout", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Logout failed", rec.Body.String())
		assert.Empty(t, rec.Header().Get("Location"))

		e.sessions.getErr = nil
		e.sessions.destroyErr = nil
		assert.Len(t, e.sessions.authenticated(), 1)
	})
}
