package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hirehub/internal/auth/credentials"
	"hirehub/internal/auth/handler"
	"hirehub/internal/config"
	"hirehub/internal/metrics"
	"hirehub/internal/middleware"
	"hirehub/internal/pages"
	"hirehub/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Credentials *credentials.Service
	Sessions    *session.Manager
	Metrics     *metrics.Metrics

	// Ready is probed by /ready; nil means always ready.
	Ready func(ctx context.Context) error

	CORSOrigin string
	StaticDir  string
}

// NewRouter assembles the gin engine: auth routes, pages and probes.
func NewRouter(d RouterDeps) (*gin.Engine, error) {
	tmpl, err := pages.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	if d.CORSOrigin != "" {
		router.Use(corsMiddleware(d.CORSOrigin))
	}
	router.SetHTMLTemplate(tmpl)

	// ----------------------------
	// Probes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	if d.StaticDir != "" {
		router.Static("/public", d.StaticDir)
	}

	// ----------------------------
	// Session-aware routes
	// ----------------------------

	var events handler.EventRecorder
	if d.Metrics != nil {
		events = d.Metrics
	}

	web := router.Group("/")
	web.Use(middleware.Gin(middleware.NewSessionMiddleware(d.Sessions).Load))

	handler.NewHandler(d.Credentials, d.Sessions, events).RegisterRoutes(web)
	pages.RegisterRoutes(web, middleware.GinRequireAuth())

	return router, nil
}

func corsMiddleware(origin string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}

	var origins []string
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// server is what setupHTTP hands to App: the router plus the background
// work and resources tied to it.
type server struct {
	router  *gin.Engine
	janitor *session.Janitor
	cleanup func() error
}

func setupHTTP(ctx context.Context, cfg config.Config) (*server, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	m := metrics.New()

	var (
		sessionStore session.Store
		janitor      *session.Janitor
	)
	switch cfg.SessionBackend {
	case config.SessionBackendPostgres:
		pgStore := session.NewPostgresStore(infra.DB)
		sessionStore = pgStore
		janitor = session.NewJanitor(pgStore, cfg.SessionPurgeInterval, m.Purged)
	default:
		sessionStore = session.NewRedisStore(infra.Redis.Client)
	}

	codec := session.NewCookieCodec([]byte(cfg.SessionSecret), cfg.SessionTTL, session.CookieOptions{
		Name:     cfg.SessionCookieName,
		HttpOnly: true,
		Secure:   cfg.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	manager := session.NewManager(sessionStore, codec, cfg.SessionTTL)

	credentialService := credentials.NewService(
		credentials.NewPostgresStore(infra.DB),
		credentials.NewBcryptHasher(cfg.BcryptCost),
		credentials.Options{AllowAdminSignup: cfg.AllowAdminSignup},
	)

	router, err := NewRouter(RouterDeps{
		Credentials: credentialService,
		Sessions:    manager,
		Metrics:     m,
		Ready:       infra.Ping,
		CORSOrigin:  cfg.CORSOrigin,
		StaticDir:   cfg.StaticDir,
	})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	return &server{
		router:  router,
		janitor: janitor,
		cleanup: infra.Close,
	}, nil
}
