package model

import "time"

// Referral is a user's personal invite code. Created lazily the first time a
// user becomes a member; one row per user.
type Referral struct {
	ID            string // UUID
	UserID        string // the referrer
	Code          string
	TotalUses     int
	RewardsEarned int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReferralUsage records one redemption of a referral code by a new user.
// Inserted in the same transaction as the counter updates on the parent
// referral, so the pair is always consistent.
type ReferralUsage struct {
	ID           string // UUID
	ReferralID   string
	NewUserID    string
	PaymentID    string
	RewardAmount int64
	CreatedAt    time.Time
}
