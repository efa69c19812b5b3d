//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/webrana/adminmail-backend/internal/models"
	"github.com/webrana/adminmail-backend/internal/repository"
	"github.com/webrana/adminmail-backend/tests/fixtures"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseIntegrationTestSuite tests repository behavior against real PostgreSQL
type DatabaseIntegrationTestSuite struct {
	suite.Suite
	container      testcontainers.Container
	db             *gorm.DB
	emailRepo      repository.EmailRepository
	draftRepo      repository.DraftRepository
	attachmentRepo repository.AttachmentRepository
}

// SetupSuite starts PostgreSQL container and initializes database
func (s *DatabaseIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "adminmail_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(s.T(), err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=adminmail_test sslmode=disable",
		host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	s.db = db

	err = db.AutoMigrate(&models.Email{}, &models.Draft{}, &models.Attachment{})
	require.NoError(s.T(), err)

	s.emailRepo = repository.NewEmailRepository(db)
	s.draftRepo = repository.NewDraftRepository(db)
	s.attachmentRepo = repository.NewAttachmentRepository(db, nil)
}

// TearDownSuite stops the PostgreSQL container
func (s *DatabaseIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		s.container.Terminate(context.Background())
	}
}

// SetupTest cleans up data before each test
func (s *DatabaseIntegrationTestSuite) SetupTest() {
	s.db.Exec("TRUNCATE TABLE attachments, drafts, emails CASCADE")
}

// TestDatabaseIntegrationTestSuite runs the test suite
func TestDatabaseIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(DatabaseIntegrationTestSuite))
}

// ==================== Email Tests ====================

func (s *DatabaseIntegrationTestSuite) TestEmail_Create() {
	ctx := context.Background()

	email := fixtures.NewEmailBuilder().Build()
	err := s.emailRepo.Create(ctx, email)

	assert.NoError(s.T(), err)

	got, err := s.emailRepo.GetByID(ctx, fixtures.TestUserID, email.ID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), email.Subject, got.Subject)
	assert.Equal(s.T(), models.FolderInbox, got.Folder)
}

func (s *DatabaseIntegrationTestSuite) TestEmail_DuplicateMessageID() {
	ctx := context.Background()

	first := fixtures.NewEmailBuilder().WithMessageID("<msg-1@example.com>").Build()
	require.NoError(s.T(), s.emailRepo.Create(ctx, first))

	second := fixtures.NewEmailBuilder().WithMessageID("<msg-1@example.com>").Build()
	err := s.emailRepo.Create(ctx, second)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry)

	// The same message id under a different user is a different message
	other := fixtures.NewEmailBuilder().
		WithUserID("user-2").
		WithMessageID("<msg-1@example.com>").
		Build()
	assert.NoError(s.T(), s.emailRepo.Create(ctx, other))
}

func (s *DatabaseIntegrationTestSuite) TestEmail_NilMessageIDNotConstrained() {
	ctx := context.Background()

	// Sent emails recorded without a provider id must not collide
	for i := 0; i < 3; i++ {
		email := fixtures.NewEmailBuilder().WithFolder(models.FolderSent).Build()
		assert.NoError(s.T(), s.emailRepo.Create(ctx, email))
	}
}

func (s *DatabaseIntegrationTestSuite) TestEmail_BulkUpdateReportsMissing() {
	ctx := context.Background()

	a := fixtures.NewEmailBuilder().Build()
	b := fixtures.NewEmailBuilder().Build()
	require.NoError(s.T(), s.emailRepo.Create(ctx, a))
	require.NoError(s.T(), s.emailRepo.Create(ctx, b))

	result, err := s.emailRepo.BulkUpdateFields(ctx, fixtures.TestUserID,
		[]string{a.ID, b.ID, "no-such-id"},
		map[string]interface{}{"is_read": true})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), result.UpdatedCount)
	assert.Equal(s.T(), []string{"no-such-id"}, result.MissingIDs)
}

func (s *DatabaseIntegrationTestSuite) TestEmail_LabelsRoundTrip() {
	ctx := context.Background()

	email := fixtures.NewEmailBuilder().WithLabels("work", "billing").Build()
	require.NoError(s.T(), s.emailRepo.Create(ctx, email))

	got, err := s.emailRepo.GetByID(ctx, fixtures.TestUserID, email.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"work", "billing"}, got.Labels)

	items, total, err := s.emailRepo.List(ctx, fixtures.TestUserID, repository.ListEmailsQuery{
		Folder: models.FolderInbox,
		Label:  "billing",
		Limit:  10,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), email.ID, items[0].ID)
}

func (s *DatabaseIntegrationTestSuite) TestEmail_UnreadCounts() {
	ctx := context.Background()

	require.NoError(s.T(), s.emailRepo.Create(ctx, fixtures.NewEmailBuilder().Build()))
	require.NoError(s.T(), s.emailRepo.Create(ctx, fixtures.NewEmailBuilder().Build()))
	require.NoError(s.T(), s.emailRepo.Create(ctx,
		fixtures.NewEmailBuilder().WithFolder(models.FolderSpam).Build()))
	require.NoError(s.T(), s.emailRepo.Create(ctx,
		fixtures.NewEmailBuilder().WithRead(true).Build()))

	counts, err := s.emailRepo.UnreadCounts(ctx, fixtures.TestUserID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), counts[models.FolderInbox])
	assert.Equal(s.T(), int64(1), counts[models.FolderSpam])
	assert.Equal(s.T(), int64(0), counts[models.FolderArchive])
	assert.Equal(s.T(), int64(0), counts[models.FolderTrash])
}

func (s *DatabaseIntegrationTestSuite) TestEmail_UserScoping() {
	ctx := context.Background()

	email := fixtures.NewEmailBuilder().Build()
	require.NoError(s.T(), s.emailRepo.Create(ctx, email))

	_, err := s.emailRepo.GetByID(ctx, "other-user", email.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

// ==================== Draft Tests ====================

func (s *DatabaseIntegrationTestSuite) TestDraft_CreateAndUpdate() {
	ctx := context.Background()

	draft := fixtures.NewDraftBuilder().Build()
	require.NoError(s.T(), s.draftRepo.Create(ctx, draft))

	updated, err := s.draftRepo.Update(ctx, fixtures.TestUserID, draft.ID,
		map[string]interface{}{"subject": "Edited"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Edited", updated.Subject)
}

func (s *DatabaseIntegrationTestSuite) TestDraft_BulkDelete() {
	ctx := context.Background()

	a := fixtures.NewDraftBuilder().Build()
	b := fixtures.NewDraftBuilder().Build()
	require.NoError(s.T(), s.draftRepo.Create(ctx, a))
	require.NoError(s.T(), s.draftRepo.Create(ctx, b))

	result, err := s.draftRepo.BulkDelete(ctx, fixtures.TestUserID,
		[]string{a.ID, b.ID, "gone"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), result.UpdatedCount)
	assert.Equal(s.T(), []string{"gone"}, result.MissingIDs)

	_, total, err := s.draftRepo.List(ctx, fixtures.TestUserID, 10, 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), total)
}

// ==================== Attachment Tests ====================

func (s *DatabaseIntegrationTestSuite) TestAttachment_ScopedThroughEmail() {
	ctx := context.Background()

	email := fixtures.NewEmailBuilder().Build()
	require.NoError(s.T(), s.emailRepo.Create(ctx, email))

	att := fixtures.NewAttachmentBuilder().WithEmailID(email.ID).Build()
	require.NoError(s.T(), s.attachmentRepo.Create(ctx, att))

	list, err := s.attachmentRepo.ListByEmail(ctx, fixtures.TestUserID, email.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 1)

	_, err = s.attachmentRepo.GetByID(ctx, "other-user", att.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}
