package repository

import (
	"context"

	"stockus-platform/internal/domain/model"
)

type PromoRepository interface {
	Create(ctx context.Context, tx Tx, p *model.PromoCode) error
	// FindByCode expects the code already normalized (upper-case, trimmed).
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	// IncrementUsage bumps current_uses by one with a single conditional
	// statement that re-checks the cap, and reports whether a row changed.
	// Two settlements racing past validation cannot push usage over max_uses.
	IncrementUsage(ctx context.Context, tx Tx, id string) (bool, error)
}
