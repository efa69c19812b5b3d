package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/middleware"
	"github.com/webrana/adminmail-backend/internal/api/response"
	"github.com/webrana/adminmail-backend/internal/mailer"
)

// SendHandler handles outbound mail dispatch requests
type SendHandler struct {
	mailer *mailer.Service
}

// NewSendHandler creates a new SendHandler
func NewSendHandler(m *mailer.Service) *SendHandler {
	return &SendHandler{mailer: m}
}

// Send handles POST /mail/send. When draftId is set the draft is removed
// after a successful dispatch.
func (h *SendHandler) Send(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	var req mailer.SendRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.mailer.Send(c.Request().Context(), userID, &req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, result, "email sent")
}
