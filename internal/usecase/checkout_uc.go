// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/adapter"
	"stockus-platform/internal/domain/ports/repository"
	"stockus-platform/internal/infra/metrics"
	"stockus-platform/internal/infra/security"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutQuote is a priced, validated purchase before any remote call.
type CheckoutQuote struct {
	OrderID        string
	Amount         int64
	OriginalAmount int64
	Promo          *model.PromoCode
	Referral       *model.Referral
}

// CheckoutResult is returned to the client to open the hosted payment page.
type CheckoutResult struct {
	OrderID        string
	Token          string
	RedirectURL    string
	Amount         int64
	OriginalAmount int64
	Discount       int64
}

// CheckoutUseCase creates pending payment records and gateway checkout
// sessions. The payment row is only written after the gateway call succeeds:
// a gateway failure must leave no trace, so the user can simply retry.
type CheckoutUseCase interface {
	SubscriptionCheckout(ctx context.Context, userID, promoCode, referralCode string) (*CheckoutResult, error)
	WorkshopCheckout(ctx context.Context, userID, cohortID, promoCode string) (*CheckoutResult, error)
	// PrevalidatePromo checks a code without creating anything, for the
	// checkout page's live code check. Returns ErrPromoInvalid for codes
	// that cannot currently be redeemed.
	PrevalidatePromo(ctx context.Context, code string) (*model.PromoCode, error)
	History(ctx context.Context, userID string, limit int) ([]*model.PaymentRecord, error)
}

type checkoutUC struct {
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	users    repository.UserRepository
	cohorts  repository.CohortRepository
	ledger   LedgerUseCase
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	price    int64 // subscription list price, smallest currency unit
	log      *zerolog.Logger
}

func NewCheckoutUseCase(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	cohorts repository.CohortRepository,
	ledger LedgerUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	subscriptionPrice int64,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		payments: payments,
		subs:     subs,
		users:    users,
		cohorts:  cohorts,
		ledger:   ledger,
		gateway:  gateway,
		tm:       tm,
		price:    subscriptionPrice,
		log:      logger,
	}
}

func (u *checkoutUC) SubscriptionCheckout(ctx context.Context, userID, promoCode, referralCode string) (*CheckoutResult, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if user.Tier == model.TierMember {
		metrics.IncCheckout("subscription", "rejected")
		return nil, domain.ErrAlreadyMember
	}
	if _, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID); err == nil {
		metrics.IncCheckout("subscription", "rejected")
		return nil, domain.ErrAlreadyMember
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	quote, err := u.quote(ctx, model.PaymentKindSubscription, u.price, promoCode, referralCode, userID)
	if err != nil {
		metrics.IncCheckout("subscription", "rejected")
		return nil, err
	}
	return u.place(ctx, user, model.PaymentKindSubscription, quote, nil, "StockUs membership")
}

func (u *checkoutUC) WorkshopCheckout(ctx context.Context, userID, cohortID, promoCode string) (*CheckoutResult, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	cohort, err := u.cohorts.FindByID(ctx, repository.NoTX, cohortID)
	if err != nil {
		return nil, err
	}
	if !cohort.OpenForEnrollment() {
		metrics.IncCheckout("workshop", "rejected")
		return nil, domain.ErrCohortNotOpen
	}

	// Workshops never carry a referral; the reward ledger is tied to
	// membership conversions only.
	quote, err := u.quote(ctx, model.PaymentKindWorkshop, *cohort.Price, promoCode, "", userID)
	if err != nil {
		metrics.IncCheckout("workshop", "rejected")
		return nil, err
	}
	return u.place(ctx, user, model.PaymentKindWorkshop, quote, &cohort.ID, cohort.Title)
}

func (u *checkoutUC) PrevalidatePromo(ctx context.Context, code string) (*model.PromoCode, error) {
	return u.ledger.ValidatePromo(ctx, code)
}

func (u *checkoutUC) History(ctx context.Context, userID string, limit int) ([]*model.PaymentRecord, error) {
	return u.payments.ListByUser(ctx, repository.NoTX, userID, limit)
}

// quote validates the codes and prices the purchase. All checks are advisory
// at this point; the authoritative promo cap check is the conditional
// increment done at settlement time.
func (u *checkoutUC) quote(ctx context.Context, kind model.PaymentKind, baseAmount int64, promoCode, referralCode, userID string) (*CheckoutQuote, error) {
	q := &CheckoutQuote{
		OrderID:        security.OrderID(kind),
		Amount:         baseAmount,
		OriginalAmount: baseAmount,
	}
	if promoCode != "" {
		p, err := u.ledger.ValidatePromo(ctx, promoCode)
		if err != nil {
			return nil, err
		}
		q.Promo = p
		q.Amount = model.DiscountedAmount(baseAmount, p.DiscountPercent)
	}
	if referralCode != "" {
		r, err := u.ledger.ValidateReferral(ctx, referralCode)
		if err != nil {
			return nil, err
		}
		if r.UserID == userID {
			return nil, domain.ErrSelfReferral
		}
		q.Referral = r
	}
	return q, nil
}

// place calls the gateway and, only on success, persists the pending record.
func (u *checkoutUC) place(ctx context.Context, user *model.User, kind model.PaymentKind, q *CheckoutQuote, cohortID *string, itemLabel string) (*CheckoutResult, error) {
	customer := adapter.Customer{ID: user.ID, Email: user.Email, Name: user.Name}
	session, err := u.gateway.CreateCheckout(ctx, q.OrderID, q.Amount, customer, itemLabel)
	if err != nil {
		metrics.IncCheckout(string(kind), "gateway_error")
		u.log.Error().Err(err).Str("order_id", q.OrderID).Msg("gateway checkout failed")
		return nil, err
	}

	rec := &model.PaymentRecord{
		ID:             uuid.NewString(),
		OrderID:        q.OrderID,
		UserID:         user.ID,
		Kind:           kind,
		Status:         model.PaymentStatusPending,
		Amount:         q.Amount,
		OriginalAmount: q.OriginalAmount,
		CohortID:       cohortID,
		CreatedAt:      time.Now(),
	}
	if q.Promo != nil {
		rec.PromoID = &q.Promo.ID
	}
	if q.Referral != nil {
		rec.ReferralID = &q.Referral.ID
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return u.payments.Create(ctx, tx, rec)
	})
	if err != nil {
		// The gateway session exists but we cannot track it. The order id is
		// unknown to us, so a later notification for it is rejected and the
		// charge never completes.
		u.log.Error().Err(err).Str("order_id", q.OrderID).Msg("pending payment insert failed after gateway call")
		return nil, err
	}

	metrics.IncCheckout(string(kind), "created")
	return &CheckoutResult{
		OrderID:        q.OrderID,
		Token:          session.Token,
		RedirectURL:    session.RedirectURL,
		Amount:         q.Amount,
		OriginalAmount: q.OriginalAmount,
		Discount:       q.OriginalAmount - q.Amount,
	}, nil
}
