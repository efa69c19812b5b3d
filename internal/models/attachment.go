package models

import (
	"time"
)

// Attachment represents a file attached to an email
type Attachment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	EmailID     string    `gorm:"not null;index;size:36" json:"emailId"`
	Filename    string    `gorm:"size:255" json:"filename"`
	ContentType string    `gorm:"size:100" json:"contentType"`
	StoragePath string    `gorm:"size:500" json:"-"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`

	// Relationships
	Email Email `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
