// File: internal/usecase/ledger_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/repository"
	"stockus-platform/internal/infra/metrics"
	"stockus-platform/internal/infra/security"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

// LedgerUseCase is the promo/referral accounting layer, independent of
// payment kind. Validation answers "can this code be used now"; application
// is the atomic bookkeeping done inside the reconciler's transaction.
type LedgerUseCase interface {
	ValidatePromo(ctx context.Context, code string) (*model.PromoCode, error)
	// ApplyPromo increments usage exactly once; fails if the cap was reached
	// between validation and settlement.
	ApplyPromo(ctx context.Context, tx repository.Tx, promoID string) error
	ValidateReferral(ctx context.Context, code string) (*model.Referral, error)
	// EnsureReferralCode is idempotent: an existing code is returned as-is.
	EnsureReferralCode(ctx context.Context, tx repository.Tx, userID string) (*model.Referral, error)
	RecordReferralReward(ctx context.Context, tx repository.Tx, referralID, newUserID, paymentID string, rewardAmount int64) error
}

type ledgerUC struct {
	promos    repository.PromoRepository
	referrals repository.ReferralRepository
	log       *zerolog.Logger
}

func NewLedgerUseCase(promos repository.PromoRepository, referrals repository.ReferralRepository, logger *zerolog.Logger) *ledgerUC {
	return &ledgerUC{promos: promos, referrals: referrals, log: logger}
}

func (u *ledgerUC) ValidatePromo(ctx context.Context, code string) (*model.PromoCode, error) {
	normalized := model.NormalizePromoCode(code)
	if normalized == "" {
		return nil, domain.ErrPromoInvalid
	}
	p, err := u.promos.FindByCode(ctx, repository.NoTX, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPromoInvalid
		}
		return nil, err
	}
	if !p.Usable(time.Now()) {
		return nil, domain.ErrPromoInvalid
	}
	return p, nil
}

func (u *ledgerUC) ApplyPromo(ctx context.Context, tx repository.Tx, promoID string) error {
	ok, err := u.promos.IncrementUsage(ctx, tx, promoID)
	if err != nil {
		return err
	}
	if !ok {
		// Cap filled by a concurrent settlement after checkout validated the
		// code. The purchase still stands; the missed increment is recorded.
		u.log.Warn().Str("promo_id", promoID).Msg("promo cap reached before settlement; usage not counted")
		return nil
	}
	metrics.IncPromoRedemption()
	return nil
}

func (u *ledgerUC) ValidateReferral(ctx context.Context, code string) (*model.Referral, error) {
	ref, err := u.referrals.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrReferralInvalid
		}
		return nil, err
	}
	return ref, nil
}

const referralCodeAttempts = 5

func (u *ledgerUC) EnsureReferralCode(ctx context.Context, tx repository.Tx, userID string) (*model.Referral, error) {
	existing, err := u.referrals.FindByUser(ctx, tx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		now := time.Now()
		ref := &model.Referral{
			ID:        uuid.NewString(),
			UserID:    userID,
			Code:      security.ReferralCode(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := u.referrals.Create(ctx, tx, ref)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: referral code generation exhausted %d attempts", domain.ErrOperationFailed, referralCodeAttempts)
}

func (u *ledgerUC) RecordReferralReward(ctx context.Context, tx repository.Tx, referralID, newUserID, paymentID string, rewardAmount int64) error {
	usage := &model.ReferralUsage{
		ID:           uuid.NewString(),
		ReferralID:   referralID,
		NewUserID:    newUserID,
		PaymentID:    paymentID,
		RewardAmount: rewardAmount,
		CreatedAt:    time.Now(),
	}
	if err := u.referrals.InsertUsage(ctx, tx, usage); err != nil {
		return err
	}
	if err := u.referrals.AddReward(ctx, tx, referralID, rewardAmount); err != nil {
		return err
	}
	metrics.IncReferralReward()
	return nil
}
