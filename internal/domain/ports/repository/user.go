package repository

import (
	"context"

	"stockus-platform/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	UpdateTier(ctx context.Context, tx Tx, id string, tier model.Tier) error
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
}
