package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/store"
)

// Handler exposes the Service over HTTP.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ListEmails returns the analysed inbox snapshot.
// GET /emails
func (h *Handler) ListEmails(c *gin.Context) {
	emails, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, emails)
}

// GetEmail returns one email.
// GET /emails/:id
func (h *Handler) GetEmail(c *gin.Context) {
	email, err := h.svc.Get(c.Request.Context(), backend.ID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, email)
}

// DeleteEmails trashes the given ids.
// POST /emails/delete
func (h *Handler) DeleteEmails(c *gin.Context) {
	var req backend.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrInvalid, err))
		return
	}
	n, err := h.svc.Delete(c.Request.Context(), req.EmailIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, backend.MessageResponse{Message: fmt.Sprintf("Deleted %d emails", n)})
}

// GenerateReply drafts a reply suggestion.
// POST /generate_reply
func (h *Handler) GenerateReply(c *gin.Context) {
	var req backend.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrInvalid, err))
		return
	}
	reply, err := h.svc.GenerateReply(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// SendEmail delivers a reply.
// POST /send_email
func (h *Handler) SendEmail(c *gin.Context) {
	var req backend.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrInvalid, err))
		return
	}
	if err := h.svc.Send(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, backend.MessageResponse{Message: "Email sent successfully"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, backend.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
