package handler

import (
	"hirehub/internal/logger"
	"hirehub/internal/metrics"
	"hirehub/internal/session"

	"github.com/gin-gonic/gin"
)

// Logout destroys the session. Failure is fatal to the request and is not
// retried.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	state := session.FromContext(ctx)

	if err := h.sessions.Destroy(ctx, c.Writer, state); err != nil {
		h.events.Record(metrics.FlowLogout, metrics.OutcomeError)
		serverError(c, "logout failed", "Logout failed", err)
		return
	}

	if state.User != nil {
		logger.Info("logout", map[string]any{
			"user_id": state.User.ID,
			"ip":      c.ClientIP(),
		})
	}

	h.events.Record(metrics.FlowLogout, metrics.OutcomeSuccess)
	redirect(c, PathWelcome)
}
