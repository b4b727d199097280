package repository

import (
	"context"

	"stockus-platform/internal/domain/model"
)

type ReferralRepository interface {
	// Create fails with domain.ErrAlreadyExists on a code collision so the
	// caller can regenerate and retry.
	Create(ctx context.Context, tx Tx, r *model.Referral) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Referral, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Referral, error)
	InsertUsage(ctx context.Context, tx Tx, u *model.ReferralUsage) error
	// AddReward increments total_uses and rewards_earned in one statement.
	AddReward(ctx context.Context, tx Tx, id string, rewardAmount int64) error
}
