package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification is a single identity verification attempt. Records are
// immutable once created; a rejected user submits a new attempt instead.
type Verification struct {
	ID              uuid.UUID          `json:"id" gorm:"type:char(36);primaryKey"`
	UserID          uint               `json:"user_id" gorm:"not null;index"`
	IDImagePath     string             `json:"id_image_path" gorm:"size:512;not null"`
	Status          VerificationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	AIConfidence    float64            `json:"ai_confidence" gorm:"not null;default:0"`
	RejectionReason string             `json:"rejection_reason,omitempty" gorm:"type:text"`
	SubmittedAt     time.Time          `json:"submitted_at"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
