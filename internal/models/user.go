package models

import (
	"time"
)

// User represents a user account holding cumulative referral points
type User struct {
	ID         string    `gorm:"primaryKey;size:128" json:"id"`
	Email      string    `gorm:"size:320;index" json:"email"`
	Points     int       `gorm:"not null;default:0;index" json:"points"`
	ReferredBy *string   `gorm:"size:128;index" json:"referred_by,omitempty"`
	Milestone  *string   `gorm:"size:20" json:"milestone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// MilestoneLabel returns the milestone label or an empty string
func (u *User) MilestoneLabel() string {
	if u.Milestone == nil {
		return ""
	}
	return *u.Milestone
}
