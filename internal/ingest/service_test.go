package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/webrana/adminmail-backend/internal/errors"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/tests/mocks"
)

func newTestService(emailRepo *mocks.MockEmailRepository, notifier *mocks.MockNotifier) *Service {
	cfg := &Config{EmailRepo: emailRepo}
	if notifier != nil {
		cfg.Notifier = notifier
	}
	return NewService(cfg)
}

func validInbound() *InboundEmail {
	return &InboundEmail{
		From:        "alerts@example.com",
		FromName:    "Alerts",
		To:          "me@example.com",
		Subject:     "Disk space warning",
		TextContent: "Volume /data is 91% full",
		MessageID:   "<alert-42@example.com>",
	}
}

func TestIngest_RejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InboundEmail)
	}{
		{"missing from", func(in *InboundEmail) { in.From = "" }},
		{"missing to", func(in *InboundEmail) { in.To = "" }},
		{"missing subject", func(in *InboundEmail) { in.Subject = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailRepo := new(mocks.MockEmailRepository)
			svc := newTestService(emailRepo, nil)

			inbound := validInbound()
			tt.mutate(inbound)

			_, _, err := svc.Ingest(context.Background(), "user-1", inbound)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			emailRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestIngest_StoresNewEmail(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	notifier := new(mocks.MockNotifier)
	svc := newTestService(emailRepo, notifier)

	emailRepo.On("GetByMessageID", mock.Anything, "user-1", "<alert-42@example.com>").
		Return(nil, repository.ErrNotFound)
	emailRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).
		Return(nil)
	emailRepo.On("CountUnread", mock.Anything, "user-1", models.FolderInbox).
		Return(int64(3), nil)
	notifier.On("NotifyNewEmail", "user-1", mock.AnythingOfType("*models.Email"), int64(3)).
		Return()

	email, created, err := svc.Ingest(context.Background(), "user-1", validInbound())

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.FolderInbox, email.Folder)
	assert.Equal(t, models.DeliveryStatusReceived, email.DeliveryStatus)
	assert.False(t, email.IsRead)
	assert.NotNil(t, email.ReceivedAt)
	require.NotNil(t, email.MessageID)
	assert.Equal(t, "<alert-42@example.com>", *email.MessageID)
	assert.Equal(t, "Volume /data is 91% full", email.Preview)

	emailRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestIngest_DuplicateMessageIDReturnsExisting(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	svc := newTestService(emailRepo, nil)

	existing := &models.Email{ID: "email-1", UserID: "user-1"}
	emailRepo.On("GetByMessageID", mock.Anything, "user-1", "<alert-42@example.com>").
		Return(existing, nil)

	email, created, err := svc.Ingest(context.Background(), "user-1", validInbound())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "email-1", email.ID)
	emailRepo.AssertNotCalled(t, "Create")
}

func TestIngest_RaceLoserReturnsWinnerRecord(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	svc := newTestService(emailRepo, nil)

	winner := &models.Email{ID: "winner", UserID: "user-1"}
	// First lookup misses, the insert then hits the unique index, and the
	// second lookup finds the record the concurrent delivery created.
	emailRepo.On("GetByMessageID", mock.Anything, "user-1", "<alert-42@example.com>").
		Return(nil, repository.ErrNotFound).Once()
	emailRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).
		Return(repository.ErrDuplicateEntry)
	emailRepo.On("GetByMessageID", mock.Anything, "user-1", "<alert-42@example.com>").
		Return(winner, nil).Once()

	email, created, err := svc.Ingest(context.Background(), "user-1", validInbound())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "winner", email.ID)
}

func TestIngest_NoMessageIDSkipsDedup(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	svc := newTestService(emailRepo, nil)

	emailRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).
		Return(nil)

	inbound := validInbound()
	inbound.MessageID = ""

	email, created, err := svc.Ingest(context.Background(), "user-1", inbound)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, email.MessageID)
	emailRepo.AssertNotCalled(t, "GetByMessageID")
}

func TestIngest_AttachmentSummaryCountsOnlyStored(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	attachmentRepo := new(mocks.MockAttachmentRepository)
	fileStorage := new(mocks.MockFileStorage)
	svc := NewService(&Config{
		EmailRepo:      emailRepo,
		AttachmentRepo: attachmentRepo,
		FileStorage:    fileStorage,
	})

	emailRepo.On("GetByMessageID", mock.Anything, "user-1", mock.Anything).
		Return(nil, repository.ErrNotFound)
	emailRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).
		Return(nil)
	fileStorage.On("Save", "report.pdf", mock.Anything).
		Return("ab/cd/report.pdf", nil)
	attachmentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Attachment) bool {
		return a.Filename == "report.pdf"
	})).Return(nil)
	emailRepo.On("UpdateFields", mock.Anything, "user-1", mock.Anything,
		map[string]interface{}{"has_attachments": true, "attachment_count": 1}).
		Return(&models.Email{}, nil)

	inbound := validInbound()
	inbound.Attachments = []InboundAttachment{
		{Filename: "report.pdf", ContentType: "application/pdf", Content: []byte("pdf")},
		// Blocked extension, must not count toward the summary
		{Filename: "payload.exe", ContentType: "application/octet-stream", Content: []byte("mz")},
	}

	email, _, err := svc.Ingest(context.Background(), "user-1", inbound)

	require.NoError(t, err)
	assert.True(t, email.HasAttachments)
	assert.Equal(t, uint(1), email.AttachmentCount)
	emailRepo.AssertExpectations(t)
	attachmentRepo.AssertExpectations(t)
}

func TestIngest_AllAttachmentsRejectedLeavesSummaryEmpty(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	attachmentRepo := new(mocks.MockAttachmentRepository)
	fileStorage := new(mocks.MockFileStorage)
	svc := NewService(&Config{
		EmailRepo:      emailRepo,
		AttachmentRepo: attachmentRepo,
		FileStorage:    fileStorage,
	})

	emailRepo.On("GetByMessageID", mock.Anything, "user-1", mock.Anything).
		Return(nil, repository.ErrNotFound)
	emailRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).
		Return(nil)

	inbound := validInbound()
	inbound.Attachments = []InboundAttachment{
		{Filename: "payload.exe", ContentType: "application/octet-stream", Content: []byte("mz")},
	}

	email, _, err := svc.Ingest(context.Background(), "user-1", inbound)

	require.NoError(t, err)
	assert.False(t, email.HasAttachments)
	assert.Equal(t, uint(0), email.AttachmentCount)
	emailRepo.AssertNotCalled(t, "UpdateFields")
	fileStorage.AssertNotCalled(t, "Save")
}

func TestIngest_HTMLOnlyDerivesTextAndPreview(t *testing.T) {
	emailRepo := new(mocks.MockEmailRepository)
	svc := newTestService(emailRepo, nil)

	emailRepo.On("GetByMessageID", mock.Anything, "user-1", mock.Anything).
		Return(nil, repository.ErrNotFound)
	emailRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Email")).
		Return(nil)

	inbound := validInbound()
	inbound.TextContent = ""
	inbound.HTMLContent = "<p>Volume <b>/data</b> is 91% full</p><script>alert(1)</script>"

	email, _, err := svc.Ingest(context.Background(), "user-1", inbound)

	require.NoError(t, err)
	assert.Equal(t, "Volume /data is 91% full", email.TextContent)
	assert.Equal(t, "Volume /data is 91% full", email.Preview)
	assert.NotContains(t, email.HTMLContent, "<script>")
}
