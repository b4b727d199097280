package repository

import (
	"context"

	"stockus-platform/internal/domain/model"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.Subscription, error)
	Cancel(ctx context.Context, tx Tx, id string) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
}
