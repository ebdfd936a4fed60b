package handler

import (
	"errors"

	"hirehub/internal/auth/credentials"
	"hirehub/internal/metrics"

	"github.com/gin-gonic/gin"
)

// registerRequest accepts url-encoded forms and JSON. The role travels as
// "usertype" from the legacy form and as "role" elsewhere.
type registerRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Usertype string `form:"usertype" json:"usertype"`
	Role     string `form:"role" json:"role"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.events.Record(metrics.FlowRegister, metrics.OutcomeInvalid)
		redirect(c, PathRegister)
		return
	}

	role := req.Usertype
	if role == "" {
		role = req.Role
	}

	_, err := h.credentials.Register(c.Request.Context(), credentials.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})

	var verr *credentials.ValidationError
	switch {
	case err == nil:
		h.events.Record(metrics.FlowRegister, metrics.OutcomeSuccess)
		redirect(c, PathLogin)
	case errors.Is(err, credentials.ErrAlreadyRegistered):
		h.events.Record(metrics.FlowRegister, metrics.OutcomeDuplicate)
		redirect(c, PathRegister)
	case errors.As(err, &verr):
		h.events.Record(metrics.FlowRegister, metrics.OutcomeInvalid)
		redirect(c, PathRegister)
	default:
		h.events.Record(metrics.FlowRegister, metrics.OutcomeError)
		serverError(c, "registration failed", "Server error", err)
	}
}
