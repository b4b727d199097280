package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/repository"
)

var _ repository.PromoRepository = (*promoRepo)(nil)

type promoRepo struct{ pool *pgxpool.Pool }

func NewPromoRepo(pool *pgxpool.Pool) *promoRepo {
	return &promoRepo{pool: pool}
}

const promoColumns = `id, code, discount_percent, max_uses, current_uses, valid_from, expires_at, active, created_at, updated_at`

func (r *promoRepo) Create(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	const q = `
INSERT INTO promo_codes (` + promoColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, model.NormalizePromoCode(p.Code), p.DiscountPercent, p.MaxUses, p.CurrentUses,
		p.ValidFrom, p.ExpiresAt, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *promoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	const q = `SELECT ` + promoColumns + ` FROM promo_codes WHERE code=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	p := &model.PromoCode{}
	if err := row.Scan(&p.ID, &p.Code, &p.DiscountPercent, &p.MaxUses, &p.CurrentUses,
		&p.ValidFrom, &p.ExpiresAt, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

// IncrementUsage applies the usage bump as one conditional statement so that
// concurrent settlements of different orders cannot push a code past its cap.
// The affected-row count is the verdict; no read-modify-write in Go.
func (r *promoRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `
UPDATE promo_codes
   SET current_uses = current_uses + 1,
       updated_at = NOW()
 WHERE id = $1
   AND active
   AND (max_uses IS NULL OR current_uses < max_uses);`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() == 1, nil
}
