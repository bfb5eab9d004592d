package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a persisted message shown to a user, written by the
// notification sink. Delivery is polling based.
type Notification struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	Type        string     `json:"type" gorm:"size:50;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Body        string     `json:"body" gorm:"type:text"`
	DeepLink    string     `json:"deep_link,omitempty" gorm:"size:512"`
	RelatedID   string     `json:"related_id,omitempty" gorm:"size:64"`
	RelatedType string     `json:"related_type,omitempty" gorm:"size:50"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
