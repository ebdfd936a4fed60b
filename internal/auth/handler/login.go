package handler

import (
	"errors"

	"hirehub/internal/auth/credentials"
	"hirehub/internal/logger"
	"hirehub/internal/metrics"
	"hirehub/internal/session"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.events.Record(metrics.FlowLogin, metrics.OutcomeInvalid)
		redirect(c, PathLogin)
		return
	}

	ctx := c.Request.Context()

	user, err := h.credentials.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, credentials.ErrUnknownEmail):
		h.events.Record(metrics.FlowLogin, metrics.OutcomeUnknownEmail)
		redirect(c, PathRegister)
		return
	case errors.Is(err, credentials.ErrPasswordMismatch):
		h.events.Record(metrics.FlowLogin, metrics.OutcomeWrongPassword)
		redirect(c, PathLogin)
		return
	case err != nil:
		h.events.Record(metrics.FlowLogin, metrics.OutcomeError)
		serverError(c, "login failed", "Server error", err)
		return
	}

	snap := user.Snapshot()
	prev := session.FromContext(ctx)
	next := prev.Authenticate(session.UserSnapshot{
		ID:       snap.ID,
		Username: snap.Username,
		Role:     string(snap.Role),
	})

	if _, err := h.sessions.Renew(ctx, c.Writer, prev, next); err != nil {
		h.events.Record(metrics.FlowLogin, metrics.OutcomeError)
		serverError(c, "login session save failed", "Server error", err)
		return
	}

	h.events.Record(metrics.FlowLogin, metrics.OutcomeSuccess)
	logger.Info("login succeeded", map[string]any{
		"user_id": snap.ID,
		"role":    string(snap.Role),
		"ip":      c.ClientIP(),
	})

	// Redirect based on role
	if snap.Role == credentials.RoleAdmin {
		redirect(c, PathAdmin)
		return
	}
	redirect(c, PathUserHome)
}
