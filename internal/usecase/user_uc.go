// File: internal/usecase/user_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/repository"
	"stockus-platform/internal/infra/metrics"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// Profile is the authenticated user's own view, with the referral code the
// dashboard shows once the user is a member.
type Profile struct {
	User         *model.User
	Subscription *model.Subscription
	Referral     *model.Referral
}

// UserUseCase covers registration, credential checks and the admin tier
// override. Every stored tier change, admin edits included, funnels through
// model.TierTransition.
type UserUseCase interface {
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*Profile, error)
	// SetTier is the admin override. Granting member creates a subscription
	// row so the one-active-per-user constraint still sees it; revoking
	// cancels any active row.
	SetTier(ctx context.Context, userID string, tier model.Tier) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
}

type userUC struct {
	users     repository.UserRepository
	subs      repository.SubscriptionRepository
	referrals repository.ReferralRepository
	ledger    LedgerUseCase
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewUserUseCase(
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	referrals repository.ReferralRepository,
	ledger LedgerUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *userUC {
	return &userUC{users: users, subs: subs, referrals: referrals, ledger: ledger, tm: tm, log: logger}
}

func (u *userUC) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if len(password) < 8 {
		return nil, domain.ErrInvalidArgument
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := model.NewUser(uuid.NewString(), email, name, string(hash))
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (u *userUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := u.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Uniform failure for unknown email and wrong password.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user.Touch()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		u.log.Warn().Err(err).Str("user_id", user.ID).Msg("last active update failed")
	}
	return user, nil
}

func (u *userUC) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: user}

	if sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID); err == nil {
		p.Subscription = sub
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if ref, err := u.referrals.FindByUser(ctx, repository.NoTX, userID); err == nil {
		p.Referral = ref
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return p, nil
}

func (u *userUC) SetTier(ctx context.Context, userID string, tier model.Tier) (*model.User, error) {
	var user *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = u.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		next, err := model.TierTransition(user.Tier, tier)
		if err != nil {
			return err
		}
		if next == user.Tier {
			return nil
		}
		if err := u.users.UpdateTier(ctx, tx, userID, next); err != nil {
			return err
		}
		user.Tier = next

		switch next {
		case model.TierMember:
			return u.adminGrant(ctx, tx, userID)
		case model.TierFree:
			return u.adminRevoke(ctx, tx, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return u.users.List(ctx, repository.NoTX, offset, limit)
}

// adminGrant mirrors what a settled subscription payment does, without a
// payment row to link.
func (u *userUC) adminGrant(ctx context.Context, tx repository.Tx, userID string) error {
	if _, err := u.subs.FindActiveByUser(ctx, tx, userID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	sub, err := model.NewSubscription(uuid.NewString(), userID, time.Now(), nil)
	if err != nil {
		return err
	}
	if err := u.subs.Create(ctx, tx, sub); err != nil {
		return err
	}
	metrics.IncSubscriptionGranted("admin")
	if _, err := u.ledger.EnsureReferralCode(ctx, tx, userID); err != nil {
		return err
	}
	return nil
}

func (u *userUC) adminRevoke(ctx context.Context, tx repository.Tx, userID string) error {
	sub, err := u.subs.FindActiveByUser(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := u.subs.Cancel(ctx, tx, sub.ID); err != nil {
		return err
	}
	metrics.IncSubscriptionCancelled("admin")
	return nil
}
