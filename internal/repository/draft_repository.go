package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/webrana/adminmail-backend/internal/models"
	"gorm.io/gorm"
)

// DraftRepository defines the interface for draft data access, scoped by
// userID on every operation.
type DraftRepository interface {
	Create(ctx context.Context, draft *models.Draft) error
	GetByID(ctx context.Context, userID, id string) (*models.Draft, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Draft, int64, error)
	Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*models.Draft, error)
	Delete(ctx context.Context, userID, id string) error
	BulkDelete(ctx context.Context, userID string, ids []string) (*BulkResult, error)
}

// draftRepository implements DraftRepository using GORM
type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new DraftRepository instance
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Create creates a new draft, assigning a store ID when none is set
func (r *draftRepository) Create(ctx context.Context, draft *models.Draft) error {
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	result := r.db.WithContext(ctx).Create(draft)
	if result.Error != nil {
		return fmt.Errorf("failed to create draft: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a draft by its ID for the given user
func (r *draftRepository) GetByID(ctx context.Context, userID, id string) (*models.Draft, error) {
	var draft models.Draft
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&draft)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft by ID: %w", result.Error)
	}
	return &draft, nil
}

// List retrieves drafts for a user with pagination, most recently edited first
func (r *draftRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.Draft, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Draft{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	var drafts []models.Draft
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&drafts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, total, nil
}

// Update applies a partial update in place and returns the updated draft
func (r *draftRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*models.Draft, error) {
	result := r.db.WithContext(ctx).Model(&models.Draft{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(changes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes a draft. Drafts are hard-deleted; there is no trash for
// unsent mail.
func (r *draftRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Draft{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes a set of drafts in a single statement and reports ids
// that did not exist for the user
func (r *draftRepository) BulkDelete(ctx context.Context, userID string, ids []string) (*BulkResult, error) {
	if len(ids) == 0 {
		return &BulkResult{}, nil
	}

	var existing []string
	err := r.db.WithContext(ctx).Model(&models.Draft{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve draft ids: %w", err)
	}

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Draft{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to bulk delete drafts: %w", result.Error)
	}

	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	res := &BulkResult{UpdatedCount: result.RowsAffected}
	for _, id := range ids {
		if !seen[id] {
			res.MissingIDs = append(res.MissingIDs, id)
		}
	}
	return res, nil
}
