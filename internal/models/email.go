package models

import (
	"time"
)

// Folder values an email can live in. An email is in exactly one folder;
// drafts are a separate entity, never a folder value.
const (
	FolderInbox   = "inbox"
	FolderSent    = "sent"
	FolderArchive = "archive"
	FolderSpam    = "spam"
	FolderTrash   = "trash"
)

// Delivery status values.
const (
	DeliveryStatusReceived = "received"
	DeliveryStatusSent     = "sent"
	DeliveryStatusFailed   = "failed"
)

// ValidFolder reports whether name is one of the five folder values.
func ValidFolder(name string) bool {
	switch name {
	case FolderInbox, FolderSent, FolderArchive, FolderSpam, FolderTrash:
		return true
	}
	return false
}

// Preview truncates text to at most n runes for list views.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// Email represents a delivered or sent message belonging to one user.
type Email struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"not null;index;size:64;uniqueIndex:idx_user_message_id" json:"userId"`

	// MessageID is the provider-assigned identity used for ingestion
	// de-duplication. NULL when the provider supplied none, so the unique
	// index only constrains rows that actually carry one.
	MessageID *string `gorm:"size:255;uniqueIndex:idx_user_message_id" json:"messageId,omitempty"`

	// from/to are SQL keywords, so the address columns carry a suffix.
	From     string `gorm:"column:from_address;not null;size:320" json:"from"`
	FromName string `gorm:"size:255" json:"fromName,omitempty"`
	To       string `gorm:"column:to_address;not null" json:"to"`
	Cc       string `json:"cc,omitempty"`
	Bcc      string `json:"bcc,omitempty"`
	ReplyTo  string `gorm:"size:320" json:"replyTo,omitempty"`

	Subject     string `json:"subject"`
	TextContent string `json:"textContent,omitempty"`
	HTMLContent string `json:"htmlContent,omitempty"`
	Preview     string `gorm:"size:255" json:"preview,omitempty"`

	IsRead      bool     `gorm:"default:false" json:"isRead"`
	IsStarred   bool     `gorm:"default:false" json:"isStarred"`
	IsImportant bool     `gorm:"default:false" json:"isImportant"`
	Labels      []string `gorm:"serializer:json" json:"labels"`

	Folder string `gorm:"not null;index;size:16" json:"folder"`

	HasAttachments  bool `gorm:"default:false" json:"hasAttachments"`
	AttachmentCount uint `gorm:"default:0" json:"attachmentCount"`

	DeliveryStatus string `gorm:"size:16" json:"deliveryStatus"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	ReceivedAt *time.Time `json:"receivedAt,omitempty"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Attachments []Attachment `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// TableName returns the table name for Email
func (Email) TableName() string {
	return "emails"
}

// EmailListItem is a lightweight version for list views
type EmailListItem struct {
	ID              string     `json:"id"`
	From            string     `json:"from"`
	FromName        string     `json:"fromName,omitempty"`
	To              string     `json:"to"`
	Subject         string     `json:"subject"`
	Preview         string     `json:"preview,omitempty"`
	IsRead          bool       `json:"isRead"`
	IsStarred       bool       `json:"isStarred"`
	IsImportant     bool       `json:"isImportant"`
	Labels          []string   `gorm:"serializer:json" json:"labels"`
	Folder          string     `json:"folder"`
	HasAttachments  bool       `json:"hasAttachments"`
	AttachmentCount uint       `json:"attachmentCount"`
	ReceivedAt      *time.Time `json:"receivedAt,omitempty"`
	SentAt          *time.Time `json:"sentAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
