package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/webrana/adminmail-backend/internal/errors"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/internal/storage"
	"github.com/webrana/adminmail-backend/internal/validator"
)

// PreviewLength is how many characters of body text list views carry
const PreviewLength = 200

// Notifier receives new-mail events after an email lands in the store
type Notifier interface {
	NotifyNewEmail(userID string, email *models.Email, unread int64)
}

// Service materializes inbound payloads as inbox emails. It is safe for
// concurrent use: de-duplication on the provider message id is backed by a
// unique index, so two deliveries of the same message racing each other
// resolve to a single record.
type Service struct {
	emailRepo      repository.EmailRepository
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
	notifier       Notifier
	logger         *slog.Logger
}

// Config holds dependencies for the ingestion service
type Config struct {
	EmailRepo      repository.EmailRepository
	AttachmentRepo repository.AttachmentRepository
	FileStorage    storage.FileStorage
	Notifier       Notifier
	Logger         *slog.Logger
}

// NewService creates a new ingestion Service
func NewService(cfg *Config) *Service {
	return &Service{
		emailRepo:      cfg.EmailRepo,
		attachmentRepo: cfg.AttachmentRepo,
		fileStorage:    cfg.FileStorage,
		notifier:       cfg.Notifier,
		logger:         cfg.Logger,
	}
}

// Ingest validates and persists an inbound email into the user's inbox.
// Redelivery of a known message id returns the existing record with
// created=false and writes nothing.
func (s *Service) Ingest(ctx context.Context, userID string, inbound *InboundEmail) (*models.Email, bool, error) {
	if err := validate(inbound); err != nil {
		return nil, false, err
	}

	if inbound.MessageID != "" {
		existing, err := s.emailRepo.GetByMessageID(ctx, userID, inbound.MessageID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, err
		}
	}

	text := inbound.TextContent
	if text == "" && inbound.HTMLContent != "" {
		text = PlainText(inbound.HTMLContent)
	}

	now := time.Now().UTC()
	email := &models.Email{
		UserID:         userID,
		From:           inbound.From,
		FromName:       inbound.FromName,
		To:             inbound.To,
		Cc:             inbound.Cc,
		Bcc:            inbound.Bcc,
		ReplyTo:        inbound.ReplyTo,
		Subject:        inbound.Subject,
		TextContent:    text,
		HTMLContent:    SanitizeHTML(inbound.HTMLContent),
		Preview:        models.Preview(text, PreviewLength),
		Labels:         []string{},
		Folder:         models.FolderInbox,
		IsRead:         false,
		DeliveryStatus: models.DeliveryStatusReceived,
		ReceivedAt:     &now,
	}
	if inbound.MessageID != "" {
		messageID := inbound.MessageID
		email.MessageID = &messageID
	}

	if err := s.emailRepo.Create(ctx, email); err != nil {
		// A concurrent delivery of the same message id won the race;
		// return its record instead of failing the webhook.
		if errors.Is(err, repository.ErrDuplicateEntry) && inbound.MessageID != "" {
			return s.fetchExisting(ctx, userID, inbound.MessageID)
		}
		return nil, false, err
	}

	if stored := s.storeAttachments(ctx, email, inbound.Attachments); stored > 0 {
		s.recordAttachmentSummary(ctx, userID, email, stored)
	}
	s.notify(ctx, userID, email)

	return email, true, nil
}

// validate enforces the required payload fields before anything is persisted
func validate(inbound *InboundEmail) error {
	var missing string
	switch {
	case inbound.From == "":
		missing = "from"
	case inbound.To == "":
		missing = "to"
	case inbound.Subject == "":
		missing = "subject"
	default:
		return nil
	}
	return fmt.Errorf("%w: missing required field %q", apperrors.ErrInvalidInput, missing)
}

func (s *Service) fetchExisting(ctx context.Context, userID, messageID string) (*models.Email, bool, error) {
	existing, err := s.emailRepo.GetByMessageID(ctx, userID, messageID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// storeAttachments persists attachment files and records, returning how many
// actually landed. A failed attachment is logged and skipped; the email
// itself has already landed.
func (s *Service) storeAttachments(ctx context.Context, email *models.Email, attachments []InboundAttachment) int {
	if s.attachmentRepo == nil || s.fileStorage == nil {
		return 0
	}
	stored := 0
	for _, att := range attachments {
		// Provider-supplied filenames are untrusted
		filename := validator.SanitizeFilename(att.Filename)
		if err := storage.ValidateFile(filename, int64(len(att.Content))); err != nil {
			s.logWarn("attachment rejected",
				slog.String("filename", filename),
				slog.Any("error", err))
			continue
		}
		path, err := s.fileStorage.Save(filename, bytes.NewReader(att.Content))
		if err != nil {
			s.logWarn("failed to store attachment file",
				slog.String("filename", filename),
				slog.Any("error", err))
			continue
		}
		record := &models.Attachment{
			EmailID:     email.ID,
			Filename:    filename,
			ContentType: att.ContentType,
			StoragePath: path,
			SizeBytes:   int64(len(att.Content)),
		}
		if err := s.attachmentRepo.Create(ctx, record); err != nil {
			s.logWarn("failed to record attachment",
				slog.String("filename", filename),
				slog.Any("error", err))
			_ = s.fileStorage.Delete(path)
			continue
		}
		stored++
	}
	return stored
}

// recordAttachmentSummary reflects the stored attachment set on the email
// record, so the summary never claims attachments that were rejected
func (s *Service) recordAttachmentSummary(ctx context.Context, userID string, email *models.Email, stored int) {
	email.HasAttachments = true
	email.AttachmentCount = uint(stored)
	_, err := s.emailRepo.UpdateFields(ctx, userID, email.ID, map[string]interface{}{
		"has_attachments":  true,
		"attachment_count": stored,
	})
	if err != nil {
		s.logWarn("failed to record attachment summary",
			slog.String("email_id", email.ID),
			slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, userID string, email *models.Email) {
	if s.notifier == nil {
		return
	}
	unread, err := s.emailRepo.CountUnread(ctx, userID, models.FolderInbox)
	if err != nil {
		unread = 0
	}
	s.notifier.NotifyNewEmail(userID, email, unread)
}

func (s *Service) logWarn(msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, attrs...)
	}
}
