package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/middleware"
	"github.com/webrana/adminmail-backend/internal/api/response"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
)

// DraftHandler handles draft-related HTTP requests
type DraftHandler struct {
	draftRepo repository.DraftRepository
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(draftRepo repository.DraftRepository) *DraftHandler {
	return &DraftHandler{draftRepo: draftRepo}
}

// DraftRequest is the create/update payload for a draft. All fields are
// optional; a draft may be saved half-written.
type DraftRequest struct {
	To             string `json:"to"`
	Cc             string `json:"cc"`
	Bcc            string `json:"bcc"`
	Subject        string `json:"subject"`
	TextContent    string `json:"textContent"`
	HTMLContent    string `json:"htmlContent"`
	ReplyToEmailID string `json:"replyToEmailId"`
	ForwardEmailID string `json:"forwardEmailId"`
}

// BulkDraftRequest represents a bulk draft operation
type BulkDraftRequest struct {
	DraftIDs []string `json:"draftIds"`
	Action   string   `json:"action"`
}

// List handles GET /mail/drafts. Drafts are reshaped into the email list
// item form so the client can render them alongside folder views.
func (h *DraftHandler) List(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	limit := defaultListLimit
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := 0
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	drafts, total, err := h.draftRepo.List(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list drafts")
	}

	items := make([]models.EmailListItem, 0, len(drafts))
	for i := range drafts {
		items = append(items, drafts[i].AsListItem())
	}

	return response.Success(c, ListEmailsResponse{
		Emails: items,
		Total:  total,
		Unread: 0,
	})
}

// Get handles GET /mail/drafts/:id
func (h *DraftHandler) Get(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	draft, err := h.draftRepo.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "draft not found")
		}
		return response.InternalError(c, "failed to get draft")
	}

	return response.Success(c, draft)
}

// Create handles POST /mail/drafts
func (h *DraftHandler) Create(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	draft := &models.Draft{
		ID:             uuid.New().String(),
		UserID:         userID,
		To:             req.To,
		Cc:             req.Cc,
		Bcc:            req.Bcc,
		Subject:        req.Subject,
		TextContent:    req.TextContent,
		HTMLContent:    req.HTMLContent,
		ReplyToEmailID: req.ReplyToEmailID,
		ForwardEmailID: req.ForwardEmailID,
	}

	if err := h.draftRepo.Create(c.Request().Context(), draft); err != nil {
		return response.InternalError(c, "failed to create draft")
	}

	return response.Created(c, draft)
}

// Update handles PUT /mail/drafts/:id. The draft is replaced wholesale;
// partial saves send the full current state.
func (h *DraftHandler) Update(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	changes := map[string]interface{}{
		"to":           req.To,
		"cc":           req.Cc,
		"bcc":          req.Bcc,
		"subject":      req.Subject,
		"text_content": req.TextContent,
		"html_content": req.HTMLContent,
	}

	draft, err := h.draftRepo.Update(c.Request().Context(), userID, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "draft not found")
		}
		return response.InternalError(c, "failed to update draft")
	}

	return response.Success(c, draft)
}

// Delete handles DELETE /mail/drafts/:id. Draft deletion is permanent;
// there is no trash for drafts.
func (h *DraftHandler) Delete(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	if err := h.draftRepo.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "draft not found")
		}
		return response.InternalError(c, "failed to delete draft")
	}

	return response.SuccessWithMessage(c, nil, "draft deleted")
}

// BulkUpdate handles PATCH /mail/drafts. Delete is the only supported bulk
// action for drafts.
func (h *DraftHandler) BulkUpdate(c echo.Context) error {
	userID := middleware.CurrentUserID(c)

	var req BulkDraftRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.DraftIDs) == 0 {
		return response.BadRequest(c, "draftIds is required")
	}
	if req.Action != actionDelete {
		return response.InvalidAction(c, fmt.Sprintf("unsupported draft action %q", req.Action))
	}

	result, err := h.draftRepo.BulkDelete(c.Request().Context(), userID, req.DraftIDs)
	if err != nil {
		return response.InternalError(c, "failed to delete drafts")
	}

	return response.SuccessWithMessage(c, BulkUpdateResponse{
		Updated:    result.UpdatedCount,
		MissingIDs: result.MissingIDs,
	}, fmt.Sprintf("deleted %d drafts", result.UpdatedCount))
}
