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

var _ repository.ReferralRepository = (*referralRepo)(nil)

type referralRepo struct{ pool *pgxpool.Pool }

func NewReferralRepo(pool *pgxpool.Pool) *referralRepo {
	return &referralRepo{pool: pool}
}

const referralColumns = `id, user_id, code, total_uses, rewards_earned, created_at, updated_at`

func scanReferral(row pgx.Row) (*model.Referral, error) {
	ref := &model.Referral{}
	if err := row.Scan(&ref.ID, &ref.UserID, &ref.Code, &ref.TotalUses, &ref.RewardsEarned, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ref, nil
}

func (r *referralRepo) Create(ctx context.Context, tx repository.Tx, ref *model.Referral) error {
	const q = `
INSERT INTO referrals (` + referralColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q,
		ref.ID, ref.UserID, ref.Code, ref.TotalUses, ref.RewardsEarned, ref.CreatedAt, ref.UpdatedAt)
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

func (r *referralRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Referral, error) {
	const q = `SELECT ` + referralColumns + ` FROM referrals WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanReferral(row)
}

func (r *referralRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Referral, error) {
	const q = `SELECT ` + referralColumns + ` FROM referrals WHERE code=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanReferral(row)
}

func (r *referralRepo) InsertUsage(ctx context.Context, tx repository.Tx, u *model.ReferralUsage) error {
	const q = `
INSERT INTO referral_usages (id, referral_id, new_user_id, payment_id, reward_amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.ReferralID, u.NewUserID, u.PaymentID, u.RewardAmount, u.CreatedAt)
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

func (r *referralRepo) AddReward(ctx context.Context, tx repository.Tx, id string, rewardAmount int64) error {
	const q = `
UPDATE referrals
   SET total_uses = total_uses + 1,
       rewards_earned = rewards_earned + $2,
       updated_at = NOW()
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, rewardAmount)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
