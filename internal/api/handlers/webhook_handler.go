package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/response"
	apperrors "github.com/webrana/adminmail-backend/internal/errors"
	"github.com/webrana/adminmail-backend/internal/ingest"
)

// Webhook bodies are bounded so a misbehaving provider cannot exhaust
// memory. 25 MB covers the common provider attachment limits.
const maxWebhookBody = 25 << 20

// WebhookHandler accepts inbound email notifications from delivery
// providers
type WebhookHandler struct {
	ingest      *ingest.Service
	inboundUser string
	logger      *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(svc *ingest.Service, inboundUser string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{ingest: svc, inboundUser: inboundUser, logger: logger}
}

// WebhookResponse acknowledges a webhook delivery
type WebhookResponse struct {
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Receive handles POST /mail/webhooks/:provider. Providers posting
// message/rfc822 or plain MIME get the raw parser; everything else is
// treated as a JSON payload. Storage failures after a valid parse are
// acknowledged with success so the provider does not retry forever.
func (h *WebhookHandler) Receive(c echo.Context) error {
	provider := c.Param("provider")

	userID := c.QueryParam("user")
	if userID == "" {
		userID = h.inboundUser
	}
	if userID == "" {
		return response.BadRequest(c, "no recipient user configured")
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return response.BadRequest(c, "failed to read request body")
	}

	var inbound *ingest.InboundEmail
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if isRawMIME(contentType) {
		inbound, err = ingest.ParseMIME(bytes.NewReader(body))
	} else {
		inbound, err = ingest.ParseJSONPayload(body)
	}
	if err != nil {
		h.logger.Warn("webhook payload rejected",
			"provider", provider,
			"content_type", contentType,
			"error", err)
		return response.BadRequest(c, "unparseable payload")
	}

	email, created, err := h.ingest.Ingest(c.Request().Context(), userID, inbound)
	if err != nil {
		if apperrors.IsInvalidInput(err) {
			return response.Error(c, err)
		}
		// The payload was valid; a store failure is ours to deal with,
		// not the provider's.
		h.logger.Error("webhook ingestion failed",
			"provider", provider,
			"user_id", userID,
			"error", err)
		return response.Success(c, WebhookResponse{})
	}

	if !created {
		return response.Success(c, WebhookResponse{ID: email.ID, Duplicate: true})
	}
	return response.Success(c, WebhookResponse{ID: email.ID})
}

func isRawMIME(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "message/rfc822") ||
		strings.HasPrefix(ct, "text/plain") ||
		strings.HasPrefix(ct, "application/mbox")
}
