package models

import (
	"time"
)

// Referral is an immutable ledger entry for one accepted referral.
// The unique indexes on email and IP are the dedup rule.
type Referral struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	ReferrerID   string    `gorm:"size:128;not null;index" json:"referrer_id"`
	NewUserUID   string    `gorm:"column:new_user_uid;size:128;not null;index" json:"new_user_uid"`
	NewUserEmail string    `gorm:"size:320;not null;uniqueIndex:idx_referrals_new_user_email" json:"new_user_email"`
	NewUserIP    string    `gorm:"column:new_user_ip;size:64;not null;uniqueIndex:idx_referrals_new_user_ip" json:"new_user_ip"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Referral) TableName() string {
	return "referrals"
}

// ReferralClaim is the assertion submitted by a new signup
type ReferralClaim struct {
	ReferrerID   string `json:"referrerId"`
	NewUserUID   string `json:"newUserUID"`
	NewUserEmail string `json:"newUserEmail"`
	NewUserIP    string `json:"newUserIP"`
}
