package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemStatus represents the lifecycle state of a listed item.
type ItemStatus string

const (
	ItemStatusPendingReview ItemStatus = "pending_review"
	ItemStatusActive        ItemStatus = "active"
	ItemStatusReserved      ItemStatus = "reserved"
	ItemStatusCompleted     ItemStatus = "completed"
	ItemStatusRemoved       ItemStatus = "removed"
)

// ItemCategories are the accepted listing categories.
var ItemCategories = []string{"books", "electronics", "clothing", "supplies", "equipment", "furniture", "sports", "others"}

// ItemConditions are the accepted condition grades.
var ItemConditions = []string{"like-new", "excellent", "good", "fair"}

// Campuses are the recognized campus sites.
var Campuses = []string{"main", "bongabong", "victoria", "pinamalayan"}

// Item represents a listed item offered for donation.
type Item struct {
	ID             uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	UserID         uint           `json:"user_id" gorm:"not null;index"`
	Title          string         `json:"title" gorm:"size:255;not null;index"`
	Description    string         `json:"description" gorm:"type:text;not null"`
	Category       string         `json:"category" gorm:"size:50;not null;index"`
	Condition      string         `json:"condition" gorm:"size:50;not null"`
	Campus         string         `json:"campus" gorm:"size:50;not null;index"`
	MeetupLocation string         `json:"meetup_location" gorm:"size:255;not null"`
	Status         ItemStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending_review';index"`
	IsVerified     bool           `json:"is_verified" gorm:"default:false"`
	ViewsCount     int            `json:"views_count" gorm:"not null;default:0"`
	PostedAt       time.Time      `json:"posted_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User   User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Images []ItemImage `json:"images,omitempty" gorm:"foreignKey:ItemID"`
}

// BeforeCreate sets UUID before creating the record.
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ItemImage is a stored photo attached to an item. The first image
// (sort order 0) is the primary one.
type ItemImage struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ItemID    uuid.UUID `json:"item_id" gorm:"type:char(36);not null;index"`
	ImagePath string    `json:"image_path" gorm:"size:512;not null"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (ii *ItemImage) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}
