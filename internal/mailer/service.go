package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaytaylor/html2text"
	apperrors "github.com/webrana/adminmail-backend/internal/errors"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
)

// DefaultProviderTimeout bounds the outbound provider call
const DefaultProviderTimeout = 30 * time.Second

// SendRequest is a composed message to dispatch. DraftID, when set, names
// the draft being promoted: it is deleted once the provider accepts the
// message.
type SendRequest struct {
	To      string `json:"to"`
	Cc      string `json:"cc,omitempty"`
	Bcc     string `json:"bcc,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
	ReplyTo string `json:"replyTo,omitempty"`
	DraftID string `json:"draftId,omitempty"`
}

// SendResult reports a successful dispatch. EmailID is empty when the sent
// record could not be persisted (the message was still delivered).
type SendResult struct {
	EmailID           string `json:"id,omitempty"`
	ProviderMessageID string `json:"providerMessageId,omitempty"`
}

// Service dispatches outbound mail through a delivery provider and records
// the outcome in the message store.
type Service struct {
	provider  Provider
	emailRepo repository.EmailRepository
	draftRepo repository.DraftRepository
	from      string
	fromName  string
	timeout   time.Duration
	logger    *slog.Logger
}

// Config holds dependencies for the dispatch service
type Config struct {
	Provider    Provider
	EmailRepo   repository.EmailRepository
	DraftRepo   repository.DraftRepository
	FromAddress string
	FromName    string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewService creates a new dispatch Service
func NewService(cfg *Config) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Service{
		provider:  cfg.Provider,
		emailRepo: cfg.EmailRepo,
		draftRepo: cfg.DraftRepo,
		from:      cfg.FromAddress,
		fromName:  cfg.FromName,
		timeout:   timeout,
		logger:    cfg.Logger,
	}
}

// Send validates the request, calls the provider, and persists a sent-folder
// record. When the provider accepted the message but the record save fails,
// the send is still reported as success: the mail left the building, and
// hiding that behind an error would invite a duplicate send. The gap is
// logged instead.
func (s *Service) Send(ctx context.Context, userID string, req *SendRequest) (*SendResult, error) {
	if err := validateSend(req); err != nil {
		return nil, err
	}

	text := req.Text
	if text == "" {
		text = textFallback(req.HTML)
	}

	msg := &OutgoingEmail{
		From:     s.from,
		FromName: s.fromName,
		To:       req.To,
		Cc:       req.Cc,
		Bcc:      req.Bcc,
		ReplyTo:  req.ReplyTo,
		Subject:  req.Subject,
		HTML:     req.HTML,
		Text:     text,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	providerMessageID, err := s.provider.Send(callCtx, msg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderTimeout, err)
		}
		return nil, apperrors.NewProviderError(s.provider.Name(), err)
	}

	result := &SendResult{ProviderMessageID: providerMessageID}

	if email, err := s.recordSent(ctx, userID, providerMessageID, msg); err != nil {
		s.logError("sent email could not be recorded",
			slog.String("user_id", userID),
			slog.String("provider_message_id", providerMessageID),
			slog.Any("error", fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)))
	} else {
		result.EmailID = email.ID
	}

	if req.DraftID != "" {
		s.promoteDraft(ctx, userID, req.DraftID)
	}

	return result, nil
}

// validateSend enforces the outbound contract before any provider call
func validateSend(req *SendRequest) error {
	switch {
	case req.To == "":
		return fmt.Errorf("%w: to is required", apperrors.ErrInvalidInput)
	case req.Subject == "":
		return fmt.Errorf("%w: subject is required", apperrors.ErrInvalidInput)
	case req.HTML == "" && req.Text == "":
		return fmt.Errorf("%w: at least one of html or text is required", apperrors.ErrInvalidInput)
	}
	return nil
}

// textFallback derives a plain-text body from HTML
func textFallback(html string) string {
	if html == "" {
		return ""
	}
	text, err := html2text.FromString(html, html2text.Options{TextOnly: true})
	if err != nil {
		return html
	}
	return text
}

// recordSent persists the sent-folder record. Self-authored mail is always
// considered read.
func (s *Service) recordSent(ctx context.Context, userID, providerMessageID string, msg *OutgoingEmail) (*models.Email, error) {
	now := time.Now().UTC()
	email := &models.Email{
		UserID:         userID,
		From:           msg.From,
		FromName:       msg.FromName,
		To:             msg.To,
		Cc:             msg.Cc,
		Bcc:            msg.Bcc,
		ReplyTo:        msg.ReplyTo,
		Subject:        msg.Subject,
		TextContent:    msg.Text,
		HTMLContent:    msg.HTML,
		Preview:        models.Preview(msg.Text, 200),
		Labels:         []string{},
		Folder:         models.FolderSent,
		IsRead:         true,
		DeliveryStatus: models.DeliveryStatusSent,
		SentAt:         &now,
	}
	if providerMessageID != "" {
		id := providerMessageID
		email.MessageID = &id
	}
	if err := s.emailRepo.Create(ctx, email); err != nil {
		return nil, err
	}
	return email, nil
}

// promoteDraft removes the draft behind a successful send. A failure here is
// logged only; the send already succeeded.
func (s *Service) promoteDraft(ctx context.Context, userID, draftID string) {
	if s.draftRepo == nil {
		return
	}
	if err := s.draftRepo.Delete(ctx, userID, draftID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logError("promoted draft could not be removed",
			slog.String("user_id", userID),
			slog.String("draft_id", draftID),
			slog.Any("error", err))
	}
}

func (s *Service) logError(msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Error(msg, attrs...)
	}
}
