package models

import (
	"time"
)

// Draft represents an unsent, editable message. A draft never turns into an
// Email in place: sending it creates a new Email in the sent folder and the
// draft row is removed.
type Draft struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"not null;index;size:64" json:"userId"`

	To      string `json:"to"`
	Cc      string `json:"cc,omitempty"`
	Bcc     string `json:"bcc,omitempty"`
	Subject string `json:"subject"`

	TextContent string `json:"textContent,omitempty"`
	HTMLContent string `json:"htmlContent,omitempty"`

	// Optional links back to the message being replied to or forwarded.
	ReplyToEmailID string `gorm:"size:36" json:"replyToEmailId,omitempty"`
	ForwardEmailID string `gorm:"size:36" json:"forwardEmailId,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Draft
func (Draft) TableName() string {
	return "drafts"
}

// AsListItem reshapes a draft into the email list item shape used by the mail
// UI. Drafts have no real folder and are always considered read.
func (d *Draft) AsListItem() EmailListItem {
	return EmailListItem{
		ID:        d.ID,
		To:        d.To,
		Subject:   d.Subject,
		Preview:   Preview(d.TextContent, 200),
		IsRead:    true,
		Folder:    "drafts",
		CreatedAt: d.CreatedAt,
	}
}
