package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionStatus represents the state of a handoff between donor and receiver.
type TransactionStatus string

const (
	TransactionStatusRequested TransactionStatus = "requested"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusMeeting   TransactionStatus = "meeting"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from the status.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

// Transaction tracks the handoff of one item from its donor to a receiver.
// The donor is captured at request time and does not change even if item
// ownership is later edited.
type Transaction struct {
	ID             uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	ItemID         uuid.UUID         `json:"item_id" gorm:"type:char(36);not null;index"`
	DonorID        uint              `json:"donor_id" gorm:"not null;index"`
	ReceiverID     uint              `json:"receiver_id" gorm:"not null;index"`
	Status         TransactionStatus `json:"status" gorm:"type:varchar(20);not null;default:'requested';index"`
	MeetupLocation string            `json:"meetup_location" gorm:"size:255"`
	ProofPhotoPath string            `json:"proof_photo_path,omitempty" gorm:"size:512"`
	RequestedAt    time.Time         `json:"requested_at"`
	ApprovedAt     *time.Time        `json:"approved_at,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Relations
	Item     Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Donor    User `json:"donor,omitempty" gorm:"foreignKey:DonorID"`
	Receiver User `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
