package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/webrana/adminmail-backend/internal/mailer"
	"github.com/webrana/adminmail-backend/internal/models"
)

// MockProvider implements mailer.Provider
type MockProvider struct {
	mock.Mock
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// Send delivers an outgoing email and returns the provider message id
func (m *MockProvider) Send(ctx context.Context, msg *mailer.OutgoingEmail) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// MockNotifier implements ingest.Notifier
type MockNotifier struct {
	mock.Mock
}

// NotifyNewEmail records a new-email notification
func (m *MockNotifier) NotifyNewEmail(userID string, email *models.Email, unreadInbox int64) {
	m.Called(userID, email, unreadInbox)
}
