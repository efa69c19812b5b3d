package smtp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-smtp"
	apperrors "github.com/webrana/adminmail-backend/internal/errors"
	"github.com/webrana/adminmail-backend/internal/ingest"
	"github.com/webrana/adminmail-backend/internal/validator"
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// AuthPlain handles PLAIN authentication (not required for receiving)
func (s *Session) AuthPlain(username, password string) error {
	// No authentication required for receiving emails
	return nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command. All syntactically valid recipients are
// accepted; delivery always lands in the configured inbound user's inbox.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	if err := validateAddress(to); err != nil {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Invalid recipient address",
		}
	}

	s.recipients = append(s.recipients, to)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", to))
	}
	return nil
}

// Data handles the DATA command - receives the email content
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	inbound, err := ingest.ParseMIME(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Fill in missing headers from the envelope
	if inbound.From == "" {
		inbound.From = s.from
	}
	if inbound.To == "" {
		inbound.To = strings.Join(s.recipients, ", ")
	}

	email, created, err := s.backend.ingest.Ingest(context.Background(), s.backend.inboundUser, inbound)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to store email",
				slog.String("from", s.from),
				slog.Any("error", err))
		}
		if apperrors.IsInvalidInput(err) {
			return &smtp.SMTPError{
				Code:         550,
				EnhancedCode: smtp.EnhancedCode{5, 6, 0},
				Message:      "Message rejected",
			}
		}
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary error",
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("email received",
			slog.String("from", s.from),
			slog.Int("recipients", len(s.recipients)),
			slog.String("subject", inbound.Subject),
			slog.String("email_id", email.ID),
			slog.Bool("duplicate", !created))
	}

	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}

// validateAddress checks that an envelope address is a usable mailbox address
func validateAddress(address string) error {
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")

	if err := validator.ValidateEmail(address); err != nil {
		return fmt.Errorf("invalid email address %q: %w", address, err)
	}
	return nil
}
