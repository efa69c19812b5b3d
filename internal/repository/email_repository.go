package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/webrana/adminmail-backend/internal/models"
	"gorm.io/gorm"
)

// ListEmailsQuery holds the filters for listing emails. Folder may be empty
// when StarredOnly is set (the starred view spans all folders).
type ListEmailsQuery struct {
	Folder      string
	StarredOnly bool
	Search      string
	Label       string
	Limit       int
	Offset      int
}

// BulkResult describes the outcome of a bulk mutation.
type BulkResult struct {
	UpdatedCount int64
	MissingIDs   []string
}

// EmailRepository defines the interface for email data access. Every
// operation is scoped by userID so no query can cross-leak another user's
// mail, even if a handler forgets the filter.
type EmailRepository interface {
	Create(ctx context.Context, email *models.Email) error
	GetByID(ctx context.Context, userID, id string) (*models.Email, error)
	GetByMessageID(ctx context.Context, userID, messageID string) (*models.Email, error)
	List(ctx context.Context, userID string, q ListEmailsQuery) ([]models.EmailListItem, int64, error)
	UpdateFields(ctx context.Context, userID, id string, changes map[string]interface{}) (*models.Email, error)
	BulkUpdateFields(ctx context.Context, userID string, ids []string, changes map[string]interface{}) (*BulkResult, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	CountUnread(ctx context.Context, userID, folder string) (int64, error)
	UnreadCounts(ctx context.Context, userID string) (map[string]int64, error)
}

// emailRepository implements EmailRepository using GORM
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new EmailRepository instance
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

// Create creates a new email, assigning a store ID when none is set
func (r *emailRepository) Create(ctx context.Context, email *models.Email) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create email: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an email by its ID for the given user
func (r *emailRepository) GetByID(ctx context.Context, userID, id string) (*models.Email, error) {
	var email models.Email
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email by ID: %w", result.Error)
	}
	return &email, nil
}

// GetByMessageID retrieves an email by its provider-assigned message ID.
// Used by the ingestion idempotency check.
func (r *emailRepository) GetByMessageID(ctx context.Context, userID, messageID string) (*models.Email, error) {
	var email models.Email
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email by message ID: %w", result.Error)
	}
	return &email, nil
}

// listScope builds the filtered query shared by List's count and page reads
func (r *emailRepository) listScope(ctx context.Context, userID string, q ListEmailsQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Email{}).Where("user_id = ?", userID)

	if q.Folder != "" {
		tx = tx.Where("folder = ?", q.Folder)
	}
	if q.StarredOnly {
		tx = tx.Where("is_starred = ?", true)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"LOWER(subject) LIKE ? OR LOWER(text_content) LIKE ? OR LOWER(from_address) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if q.Label != "" {
		// Labels are stored as a JSON array; membership is matched on the
		// quoted element to avoid substring false positives. Wildcards in
		// the filter value are escaped so they match literally.
		tx = tx.Where(`labels LIKE ? ESCAPE '\'`, `%"`+likeEscaper.Replace(q.Label)+`"%`)
	}
	return tx
}

// List retrieves emails matching the query with pagination, newest first
func (r *emailRepository) List(ctx context.Context, userID string, q ListEmailsQuery) ([]models.EmailListItem, int64, error) {
	var total int64
	if err := r.listScope(ctx, userID, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count emails: %w", err)
	}

	var emails []models.Email
	err := r.listScope(ctx, userID, q).
		Order("created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&emails).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list emails: %w", err)
	}

	items := make([]models.EmailListItem, 0, len(emails))
	for i := range emails {
		items = append(items, toListItem(&emails[i]))
	}
	return items, total, nil
}

func toListItem(e *models.Email) models.EmailListItem {
	return models.EmailListItem{
		ID:              e.ID,
		From:            e.From,
		FromName:        e.FromName,
		To:              e.To,
		Subject:         e.Subject,
		Preview:         e.Preview,
		IsRead:          e.IsRead,
		IsStarred:       e.IsStarred,
		IsImportant:     e.IsImportant,
		Labels:          e.Labels,
		Folder:          e.Folder,
		HasAttachments:  e.HasAttachments,
		AttachmentCount: e.AttachmentCount,
		ReceivedAt:      e.ReceivedAt,
		SentAt:          e.SentAt,
		CreatedAt:       e.CreatedAt,
	}
}

// UpdateFields applies a partial update to one email and returns the updated
// record
func (r *emailRepository) UpdateFields(ctx context.Context, userID, id string, changes map[string]interface{}) (*models.Email, error) {
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(normalizeChanges(changes))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update email: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, userID, id)
}

// BulkUpdateFields applies one field-set to a set of ids as a single UPDATE
// statement, so a concurrent batch on an overlapping id set can never observe
// this batch half-applied. IDs that do not exist for the user are reported
// back, not treated as a failure of the whole batch.
func (r *emailRepository) BulkUpdateFields(ctx context.Context, userID string, ids []string, changes map[string]interface{}) (*BulkResult, error) {
	if len(ids) == 0 {
		return &BulkResult{}, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(normalizeChanges(changes))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to bulk update emails: %w", result.Error)
	}

	res := &BulkResult{UpdatedCount: result.RowsAffected}
	if result.RowsAffected < int64(len(ids)) {
		missing, err := r.findMissing(ctx, userID, ids)
		if err != nil {
			return nil, err
		}
		res.MissingIDs = missing
	}
	return res, nil
}

// findMissing reports which of ids do not exist for the user
func (r *emailRepository) findMissing(ctx context.Context, userID string, ids []string) ([]string, error) {
	var existing []string
	err := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve missing ids: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// likeEscaper neutralizes LIKE wildcards in filter values
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// normalizeChanges serializes label slices so map-based updates hit the JSON
// column the same way struct writes do
func normalizeChanges(changes map[string]interface{}) map[string]interface{} {
	labels, ok := changes["labels"].([]string)
	if !ok {
		return changes
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return changes
	}
	out := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		out[k] = v
	}
	out["labels"] = string(encoded)
	return out
}

// MarkAsRead marks an email as read
func (r *emailRepository) MarkAsRead(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark email as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread counts unread emails in one folder for a user
func (r *emailRepository) CountUnread(ctx context.Context, userID, folder string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Email{}).
		Where("user_id = ? AND folder = ? AND is_read = ?", userID, folder, false).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread emails: %w", result.Error)
	}
	return count, nil
}

// UnreadCounts returns unread counts per folder for a user. Folders with no
// unread mail are present with a zero count.
func (r *emailRepository) UnreadCounts(ctx context.Context, userID string) (map[string]int64, error) {
	type folderCount struct {
		Folder string
		Count  int64
	}
	var rows []folderCount
	err := r.db.WithContext(ctx).Model(&models.Email{}).
		Select("folder, COUNT(*) as count").
		Where("user_id = ? AND is_read = ?", userID, false).
		Group("folder").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unread emails: %w", err)
	}

	counts := map[string]int64{
		models.FolderInbox:   0,
		models.FolderSent:    0,
		models.FolderArchive: 0,
		models.FolderSpam:    0,
		models.FolderTrash:   0,
	}
	for _, row := range rows {
		counts[row.Folder] = row.Count
	}
	return counts, nil
}
