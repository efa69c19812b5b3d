package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/middleware"
	"github.com/webrana/adminmail-backend/internal/api/response"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/internal/validator"
)

// Pagination limits for email lists
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// EmailHandler handles email-related HTTP requests
type EmailHandler struct {
	emailRepo repository.EmailRepository
	logger    *slog.Logger
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(emailRepo repository.EmailRepository, logger *slog.Logger) *EmailHandler {
	return &EmailHandler{emailRepo: emailRepo, logger: logger}
}

// ListEmailsResponse is the payload for list views: the page of emails, the
// total match count, and the unread count for the folder in view
type ListEmailsResponse struct {
	Emails []models.EmailListItem `json:"emails"`
	Total  int64                  `json:"total"`
	Unread int64                  `json:"unread"`
}

// UpdateEmailRequest represents a single or bulk mutation request
type UpdateEmailRequest struct {
	EmailIDs []string    `json:"emailIds,omitempty"`
	Action   string      `json:"action"`
	Value    interface{} `json:"value,omitempty"`
}

// List handles GET /mail/emails
func (h *EmailHandler) List(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	starred := c.QueryParam("starred") == "true"
	folder := c.QueryParam("folder")
	if folder == "" && !starred {
		folder = models.FolderInbox
	}
	if folder != "" && !models.ValidFolder(folder) {
		return response.BadRequest(c, fmt.Sprintf("invalid folder %q", folder))
	}

	q := repository.ListEmailsQuery{
		Folder:      folder,
		StarredOnly: starred,
		Search:      c.QueryParam("search"),
		Label:       c.QueryParam("label"),
		Limit:       defaultListLimit,
	}
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			q.Limit = parsed
		}
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			q.Offset = parsed
		}
	}

	emails, total, err := h.emailRepo.List(c.Request().Context(), userID, q)
	if err != nil {
		return response.InternalError(c, "failed to list emails")
	}

	var unread int64
	if folder != "" {
		unread, err = h.emailRepo.CountUnread(c.Request().Context(), userID, folder)
		if err != nil {
			return response.InternalError(c, "failed to count unread emails")
		}
	}

	return response.Success(c, ListEmailsResponse{
		Emails: emails,
		Total:  total,
		Unread: unread,
	})
}

// Get handles GET /mail/emails/:id. Viewing an unread email marks it read.
func (h *EmailHandler) Get(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	email, err := h.emailRepo.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "email not found")
		}
		return response.InternalError(c, "failed to get email")
	}

	if !email.IsRead {
		if err := h.emailRepo.MarkAsRead(c.Request().Context(), userID, id); err != nil {
			// The response keeps the stored state so unread counts read
			// back consistent with what the client sees.
			h.logger.Warn("failed to mark email as read",
				"email_id", id,
				"error", err)
		} else {
			email.IsRead = true
		}
	}

	return response.Success(c, email)
}

// Update handles PATCH /mail/emails/:id
func (h *EmailHandler) Update(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	var req UpdateEmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Action == "" {
		return response.BadRequest(c, "action is required")
	}

	if req.Action == actionLabel || req.Action == actionUnlabel {
		return h.updateLabels(c, userID, id, &req)
	}

	changes, err := changesForAction(req.Action, req.Value)
	if err != nil {
		return response.Error(c, err)
	}

	if _, err := h.emailRepo.UpdateFields(c.Request().Context(), userID, id, changes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "email not found")
		}
		return response.InternalError(c, "failed to update email")
	}

	return response.SuccessWithMessage(c, nil, fmt.Sprintf("action %s applied", req.Action))
}

// updateLabels handles the label/unlabel actions, which need the record's
// current label set
func (h *EmailHandler) updateLabels(c echo.Context, userID, id string, req *UpdateEmailRequest) error {
	label, _ := req.Value.(string)
	if label == "" {
		return response.BadRequest(c, "label value is required")
	}
	if err := validator.ValidateLabel(label); err != nil {
		return response.BadRequest(c, fmt.Sprintf("invalid label %q", label))
	}

	email, err := h.emailRepo.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "email not found")
		}
		return response.InternalError(c, "failed to get email")
	}

	labels := applyLabelChange(email.Labels, req.Action, label)
	changes := map[string]interface{}{"labels": labels}
	if _, err := h.emailRepo.UpdateFields(c.Request().Context(), userID, id, changes); err != nil {
		return response.InternalError(c, "failed to update labels")
	}

	return response.SuccessWithMessage(c, nil, fmt.Sprintf("action %s applied", req.Action))
}

// BulkUpdateResponse reports a bulk mutation outcome. Ids that did not
// exist are reported, not treated as a failure of the batch.
type BulkUpdateResponse struct {
	Updated    int64    `json:"updated"`
	MissingIDs []string `json:"missingIds,omitempty"`
}

// BulkUpdate handles PATCH /mail/emails
func (h *EmailHandler) BulkUpdate(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	var req UpdateEmailRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.EmailIDs) == 0 {
		return response.BadRequest(c, "emailIds is required")
	}
	if req.Action == actionLabel || req.Action == actionUnlabel {
		return response.InvalidAction(c, "label actions are not supported in bulk")
	}

	changes, err := changesForAction(req.Action, req.Value)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.emailRepo.BulkUpdateFields(c.Request().Context(), userID, req.EmailIDs, changes)
	if err != nil {
		return response.InternalError(c, "failed to update emails")
	}

	return response.SuccessWithMessage(c, BulkUpdateResponse{
		Updated:    result.UpdatedCount,
		MissingIDs: result.MissingIDs,
	}, fmt.Sprintf("action %s applied to %d emails", req.Action, result.UpdatedCount))
}

// Delete handles DELETE /mail/emails/:id. Deleting moves the email to
// trash; rows are never removed through this path.
func (h *EmailHandler) Delete(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	changes := map[string]interface{}{"folder": models.FolderTrash}
	if _, err := h.emailRepo.UpdateFields(c.Request().Context(), userID, id, changes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "email not found")
		}
		return response.InternalError(c, "failed to delete email")
	}

	return response.SuccessWithMessage(c, nil, "email moved to trash")
}

// Unread handles GET /mail/unread
func (h *EmailHandler) Unread(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	counts, err := h.emailRepo.UnreadCounts(c.Request().Context(), userID)
	if err != nil {
		return response.InternalError(c, "failed to count unread emails")
	}

	return response.Success(c, counts)
}
