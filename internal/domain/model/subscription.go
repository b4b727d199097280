package model

import (
	"time"

	"stockus-platform/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is one year of membership. At most one active row per user;
// the database enforces this with a partial unique index.
type Subscription struct {
	ID        string // UUID
	UserID    string
	Status    SubscriptionStatus
	StartAt   time.Time
	EndAt     time.Time
	PaymentID *string // nil for admin-granted subscriptions
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubscription creates an active subscription running one year from start.
func NewSubscription(id, userID string, start time.Time, paymentID *string) (*Subscription, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:        id,
		UserID:    userID,
		Status:    SubscriptionStatusActive,
		StartAt:   start,
		EndAt:     start.AddDate(1, 0, 0),
		PaymentID: paymentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
