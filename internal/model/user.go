package model

import "time"

// UserType classifies campus affiliation.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeFaculty UserType = "faculty"
	UserTypeStaff   UserType = "staff"
)

// VerificationStatus tracks the outcome of the user's latest ID verification.
type VerificationStatus string

const (
	VerificationStatusNone     VerificationStatus = "none"
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// Tier is the reward rank derived from accumulated points.
type Tier string

const (
	TierBronze Tier = "Bronze Contributor"
	TierSilver Tier = "Silver Contributor"
	TierGold   Tier = "Gold Community Champion"
)

// User represents a registered member of the campus exchange.
type User struct {
	ID                 uint               `json:"id" gorm:"primaryKey"`
	FirstName          string             `json:"first_name" gorm:"size:255;not null"`
	LastName           string             `json:"last_name" gorm:"size:255;not null"`
	Email              string             `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string             `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	StudentID          string             `json:"student_id" gorm:"size:50;not null"`
	Campus             string             `json:"campus" gorm:"size:50;not null"`
	UserType           UserType           `json:"user_type" gorm:"type:varchar(20);not null"`
	IsVerified         bool               `json:"is_verified" gorm:"default:false;index"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:varchar(20);default:'none'"`
	Points             int                `json:"points" gorm:"not null;default:0"`
	Tier               Tier               `json:"tier" gorm:"size:50;default:'Bronze Contributor'"`
	Role               string             `json:"role,omitempty" gorm:"size:50;default:'user'"`
	AvatarURL          string             `json:"avatar_url,omitempty" gorm:"size:512"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// FullName returns the display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
