package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/storage"
	"gorm.io/gorm"
)

// AttachmentRepository defines the interface for attachment data access.
// Reads are scoped by userID through the owning email so attachments can
// never leak across users.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, userID, id string) (*models.Attachment, error)
	ListByEmail(ctx context.Context, userID, emailID string) ([]models.Attachment, error)
	Delete(ctx context.Context, userID, id string) error
}

// attachmentRepository implements AttachmentRepository using GORM
type attachmentRepository struct {
	db          *gorm.DB
	fileStorage storage.FileStorage
}

// NewAttachmentRepository creates a new AttachmentRepository instance
func NewAttachmentRepository(db *gorm.DB, fileStorage storage.FileStorage) AttachmentRepository {
	return &attachmentRepository{
		db:          db,
		fileStorage: fileStorage,
	}
}

// Create creates a new attachment record
func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.New().String()
	}
	result := r.db.WithContext(ctx).Create(attachment)
	if result.Error != nil {
		return fmt.Errorf("failed to create attachment: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an attachment owned by the user
func (r *attachmentRepository) GetByID(ctx context.Context, userID, id string) (*models.Attachment, error) {
	var attachment models.Attachment
	result := r.db.WithContext(ctx).
		Joins("JOIN emails ON emails.id = attachments.email_id").
		Where("attachments.id = ? AND emails.user_id = ?", id, userID).
		First(&attachment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attachment by ID: %w", result.Error)
	}
	return &attachment, nil
}

// ListByEmail retrieves all attachments for one of the user's emails
func (r *attachmentRepository) ListByEmail(ctx context.Context, userID, emailID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	result := r.db.WithContext(ctx).
		Joins("JOIN emails ON emails.id = attachments.email_id").
		Where("attachments.email_id = ? AND emails.user_id = ?", emailID, userID).
		Find(&attachments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", result.Error)
	}
	return attachments, nil
}

// Delete deletes an attachment record and removes the stored file
func (r *attachmentRepository) Delete(ctx context.Context, userID, id string) error {
	attachment, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&models.Attachment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete attachment: %w", result.Error)
	}

	// File may already be gone; that is fine.
	if attachment.StoragePath != "" && r.fileStorage != nil {
		_ = r.fileStorage.Delete(attachment.StoragePath)
	}

	return nil
}
