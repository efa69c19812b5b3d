package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
)

// MockEmailRepository implements repository.EmailRepository
type MockEmailRepository struct {
	mock.Mock
}

// Create persists a new email
func (m *MockEmailRepository) Create(ctx context.Context, email *models.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// GetByID retrieves an email by its ID scoped to a user
func (m *MockEmailRepository) GetByID(ctx context.Context, userID, id string) (*models.Email, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// GetByMessageID retrieves an email by its provider message id
func (m *MockEmailRepository) GetByMessageID(ctx context.Context, userID, messageID string) (*models.Email, error) {
	args := m.Called(ctx, userID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// List retrieves a filtered page of emails
func (m *MockEmailRepository) List(ctx context.Context, userID string, q repository.ListEmailsQuery) ([]models.EmailListItem, int64, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.EmailListItem), args.Get(1).(int64), args.Error(2)
}

// UpdateFields applies field changes to a single email
func (m *MockEmailRepository) UpdateFields(ctx context.Context, userID, id string, changes map[string]interface{}) (*models.Email, error) {
	args := m.Called(ctx, userID, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

// BulkUpdateFields applies field changes to a set of emails
func (m *MockEmailRepository) BulkUpdateFields(ctx context.Context, userID string, ids []string, changes map[string]interface{}) (*repository.BulkResult, error) {
	args := m.Called(ctx, userID, ids, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BulkResult), args.Error(1)
}

// MarkAsRead marks an email as read
func (m *MockEmailRepository) MarkAsRead(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// CountUnread counts unread emails in one folder
func (m *MockEmailRepository) CountUnread(ctx context.Context, userID, folder string) (int64, error) {
	args := m.Called(ctx, userID, folder)
	return args.Get(0).(int64), args.Error(1)
}

// UnreadCounts returns unread counts for all folders
func (m *MockEmailRepository) UnreadCounts(ctx context.Context, userID string) (map[string]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockDraftRepository implements repository.DraftRepository
type MockDraftRepository struct {
	mock.Mock
}

// Create persists a new draft
func (m *MockDraftRepository) Create(ctx context.Context, draft *models.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

// GetByID retrieves a draft by its ID scoped to a user
func (m *MockDraftRepository) GetByID(ctx context.Context, userID, id string) (*models.Draft, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// List retrieves a page of drafts ordered by last edit
func (m *MockDraftRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.Draft, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Draft), args.Get(1).(int64), args.Error(2)
}

// Update applies field changes to a draft
func (m *MockDraftRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*models.Draft, error) {
	args := m.Called(ctx, userID, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

// Delete removes a draft
func (m *MockDraftRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// BulkDelete removes a set of drafts
func (m *MockDraftRepository) BulkDelete(ctx context.Context, userID string, ids []string) (*repository.BulkResult, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BulkResult), args.Error(1)
}

// MockAttachmentRepository implements repository.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// Create persists a new attachment record
func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

// GetByID retrieves an attachment by its ID scoped to a user
func (m *MockAttachmentRepository) GetByID(ctx context.Context, userID, id string) (*models.Attachment, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

// ListByEmail retrieves all attachments for an email
func (m *MockAttachmentRepository) ListByEmail(ctx context.Context, userID, emailID string) ([]models.Attachment, error) {
	args := m.Called(ctx, userID, emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

// Delete removes an attachment record and its stored file
func (m *MockAttachmentRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
