package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/webrana/adminmail-backend/internal/api/middleware"
	"github.com/webrana/adminmail-backend/internal/api/response"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/internal/storage"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentRepo repository.AttachmentRepository, fileStorage storage.FileStorage) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
	}
}

// ListByEmail handles GET /mail/emails/:id/attachments
func (h *AttachmentHandler) ListByEmail(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	emailID := c.Param("id")

	attachments, err := h.attachmentRepo.ListByEmail(c.Request().Context(), userID, emailID)
	if err != nil {
		return response.InternalError(c, "failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Get handles GET /mail/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	return response.Success(c, attachment)
}

// Download handles GET /mail/attachments/:id/download, streaming the stored
// file with the original filename.
func (h *AttachmentHandler) Download(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	id := c.Param("id")

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	file, err := h.fileStorage.Get(attachment.StoragePath)
	if err != nil {
		return response.InternalError(c, "failed to open attachment file")
	}
	defer file.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, attachment.Filename))
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().Header().Set(echo.HeaderContentLength, fmt.Sprintf("%d", attachment.SizeBytes))

	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response().Writer, file)
	return err
}
