package handler

import (
	"net/http"

	"hirehub/internal/auth/credentials"
	"hirehub/internal/logger"
	"hirehub/internal/session"

	"github.com/gin-gonic/gin"
)

// Redirect targets.
const (
	PathWelcome  = "/"
	PathRegister = "/register"
	PathLogin    = "/login"
	PathUserHome = "/homeuser"
	PathAdmin    = "/admin"
)

// EventRecorder counts flow outcomes; *metrics.Metrics implements it.
type EventRecorder interface {
	Record(flow, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}

type Handler struct {
	credentials *credentials.Service
	sessions    *session.Manager
	events      EventRecorder
}

func NewHandler(
	credentialService *credentials.Service,
	sessions *session.Manager,
	events EventRecorder,
) *Handler {
	if events == nil {
		events = nopRecorder{}
	}
	return &Handler{
		credentials: credentialService,
		sessions:    sessions,
		events:      events,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST(PathRegister, h.Register)
	r.POST(PathLogin, h.Login)
	r.GET("/logout", h.Logout)
}

// serverError answers with a generic 500; detail goes to the log only.
func serverError(c *gin.Context, msg string, body string, err error) {
	logger.Error(msg, map[string]any{
		"error": err.Error(),
		"path":  c.Request.URL.Path,
	})
	c.String(http.StatusInternalServerError, body)
}

func redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusFound, path)
}
