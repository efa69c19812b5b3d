package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/webrana/adminmail-backend/internal/models"
)

// TestUserID is the user every fixture belongs to unless overridden
const TestUserID = "user-1"

// EmailBuilder creates test Email instances with fluent API
type EmailBuilder struct {
	email models.Email
}

// NewEmailBuilder creates a new EmailBuilder with sensible defaults
func NewEmailBuilder() *EmailBuilder {
	now := time.Now().UTC()
	return &EmailBuilder{
		email: models.Email{
			ID:             uuid.New().String(),
			UserID:         TestUserID,
			From:           "sender@example.com",
			FromName:       "Sender",
			To:             "me@example.com",
			Subject:        "Test email",
			TextContent:    "Hello from the test suite",
			Preview:        "Hello from the test suite",
			Folder:         models.FolderInbox,
			DeliveryStatus: models.DeliveryStatusReceived,
			ReceivedAt:     &now,
		},
	}
}

// WithID sets the email ID
func (b *EmailBuilder) WithID(id string) *EmailBuilder {
	b.email.ID = id
	return b
}

// WithUserID sets the owning user
func (b *EmailBuilder) WithUserID(userID string) *EmailBuilder {
	b.email.UserID = userID
	return b
}

// WithMessageID sets the provider message id
func (b *EmailBuilder) WithMessageID(messageID string) *EmailBuilder {
	b.email.MessageID = &messageID
	return b
}

// WithFrom sets the sender address
func (b *EmailBuilder) WithFrom(from string) *EmailBuilder {
	b.email.From = from
	return b
}

// WithSubject sets the subject
func (b *EmailBuilder) WithSubject(subject string) *EmailBuilder {
	b.email.Subject = subject
	return b
}

// WithFolder sets the folder
func (b *EmailBuilder) WithFolder(folder string) *EmailBuilder {
	b.email.Folder = folder
	return b
}

// WithRead sets the read flag
func (b *EmailBuilder) WithRead(read bool) *EmailBuilder {
	b.email.IsRead = read
	return b
}

// WithStarred sets the starred flag
func (b *EmailBuilder) WithStarred(starred bool) *EmailBuilder {
	b.email.IsStarred = starred
	return b
}

// WithImportant sets the important flag
func (b *EmailBuilder) WithImportant(important bool) *EmailBuilder {
	b.email.IsImportant = important
	return b
}

// WithLabels sets the label set
func (b *EmailBuilder) WithLabels(labels ...string) *EmailBuilder {
	b.email.Labels = labels
	return b
}

// WithTextContent sets the plain text body
func (b *EmailBuilder) WithTextContent(text string) *EmailBuilder {
	b.email.TextContent = text
	b.email.Preview = models.Preview(text, 200)
	return b
}

// Build returns the constructed Email
func (b *EmailBuilder) Build() *models.Email {
	email := b.email
	return &email
}

// DraftBuilder creates test Draft instances with fluent API
type DraftBuilder struct {
	draft models.Draft
}

// NewDraftBuilder creates a new DraftBuilder with sensible defaults
func NewDraftBuilder() *DraftBuilder {
	return &DraftBuilder{
		draft: models.Draft{
			ID:          uuid.New().String(),
			UserID:      TestUserID,
			To:          "recipient@example.com",
			Subject:     "Draft subject",
			TextContent: "Draft body",
		},
	}
}

// WithID sets the draft ID
func (b *DraftBuilder) WithID(id string) *DraftBuilder {
	b.draft.ID = id
	return b
}

// WithUserID sets the owning user
func (b *DraftBuilder) WithUserID(userID string) *DraftBuilder {
	b.draft.UserID = userID
	return b
}

// WithSubject sets the subject
func (b *DraftBuilder) WithSubject(subject string) *DraftBuilder {
	b.draft.Subject = subject
	return b
}

// WithReplyTo links the draft to the email being replied to
func (b *DraftBuilder) WithReplyTo(emailID string) *DraftBuilder {
	b.draft.ReplyToEmailID = emailID
	return b
}

// Build returns the constructed Draft
func (b *DraftBuilder) Build() *models.Draft {
	draft := b.draft
	return &draft
}

// AttachmentBuilder creates test Attachment instances with fluent API
type AttachmentBuilder struct {
	attachment models.Attachment
}

// NewAttachmentBuilder creates a new AttachmentBuilder with sensible defaults
func NewAttachmentBuilder() *AttachmentBuilder {
	return &AttachmentBuilder{
		attachment: models.Attachment{
			ID:          uuid.New().String(),
			Filename:    "report.pdf",
			ContentType: "application/pdf",
			StoragePath: "ab/report.pdf",
			SizeBytes:   2048,
		},
	}
}

// WithEmailID sets the owning email
func (b *AttachmentBuilder) WithEmailID(emailID string) *AttachmentBuilder {
	b.attachment.EmailID = emailID
	return b
}

// WithFilename sets the filename
func (b *AttachmentBuilder) WithFilename(filename string) *AttachmentBuilder {
	b.attachment.Filename = filename
	return b
}

// Build returns the constructed Attachment
func (b *AttachmentBuilder) Build() *models.Attachment {
	attachment := b.attachment
	return &attachment
}
