package repository

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/webrana/adminmail-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingStorage tracks deleted paths without touching the filesystem
type recordingStorage struct {
	deleted []string
}

func (s *recordingStorage) Save(filename string, content io.Reader) (string, error) {
	return filename, nil
}

func (s *recordingStorage) Get(filePath string) (io.ReadCloser, error) {
	return nil, nil
}

func (s *recordingStorage) Delete(filePath string) error {
	s.deleted = append(s.deleted, filePath)
	return nil
}

// AttachmentRepositoryTestSuite tests the attachment repository with in-memory SQLite
type AttachmentRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	storage *recordingStorage
	repo    AttachmentRepository
	emailID string
}

func (s *AttachmentRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	require.NoError(s.T(), db.AutoMigrate(&models.Email{}, &models.Attachment{}))

	s.db = db
	s.storage = &recordingStorage{}
	s.repo = NewAttachmentRepository(db, s.storage)

	email := &models.Email{
		ID:      uuid.New().String(),
		UserID:  testUserID,
		From:    "sender@example.com",
		To:      "me@example.com",
		Subject: "with attachment",
		Folder:  models.FolderInbox,
	}
	require.NoError(s.T(), db.Create(email).Error)
	s.emailID = email.ID
}

func TestAttachmentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentRepositoryTestSuite))
}

func (s *AttachmentRepositoryTestSuite) newAttachment() *models.Attachment {
	att := &models.Attachment{
		ID:          uuid.New().String(),
		EmailID:     s.emailID,
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		StoragePath: "ab/report.pdf",
		SizeBytes:   2048,
	}
	require.NoError(s.T(), s.repo.Create(context.Background(), att))
	return att
}

func (s *AttachmentRepositoryTestSuite) TestGetByID_ScopedThroughEmail() {
	att := s.newAttachment()

	got, err := s.repo.GetByID(context.Background(), testUserID, att.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), att.Filename, got.Filename)

	_, err = s.repo.GetByID(context.Background(), "someone-else", att.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *AttachmentRepositoryTestSuite) TestListByEmail() {
	s.newAttachment()
	s.newAttachment()

	list, err := s.repo.ListByEmail(context.Background(), testUserID, s.emailID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 2)

	list, err = s.repo.ListByEmail(context.Background(), "someone-else", s.emailID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

func (s *AttachmentRepositoryTestSuite) TestDelete_RemovesRecordAndFile() {
	att := s.newAttachment()

	require.NoError(s.T(), s.repo.Delete(context.Background(), testUserID, att.ID))

	_, err := s.repo.GetByID(context.Background(), testUserID, att.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Equal(s.T(), []string{"ab/report.pdf"}, s.storage.deleted)
}

func (s *AttachmentRepositoryTestSuite) TestDelete_OtherUserCannot() {
	att := s.newAttachment()

	err := s.repo.Delete(context.Background(), "someone-else", att.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Empty(s.T(), s.storage.deleted)
}
