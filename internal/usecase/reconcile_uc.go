// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileResult reports what a processed notification did.
type ReconcileResult struct {
	Payment    *model.PaymentRecord
	Duplicate  bool
	Resolution model.Resolution
}

// ReconcileUseCase drives the payment state machine from inbound gateway
// notifications. It is the only writer of payment records after creation.
//
// Error contract for the transport layer:
//   - domain.ErrBadSignature, domain.ErrNotFound: client errors; the gateway
//     must not retry, the request can never succeed.
//   - anything else: server error; the gateway should retry. No irreversible
//     side effect happens outside the transaction, so a retry is safe and
//     will hit the idempotency check.
type ReconcileUseCase interface {
	Process(ctx context.Context, n adapter.StatusNotification) (*ReconcileResult, error)
}

type reconcileUC struct {
	payments       repository.PaymentRepository
	subs           repository.SubscriptionRepository
	users          repository.UserRepository
	ledger         LedgerUseCase
	tm             repository.TransactionManager
	mailer         adapter.Mailer
	serverKey      string
	currency       string
	referralReward int64
	log            *zerolog.Logger
}

func NewReconcileUseCase(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	ledger LedgerUseCase,
	tm repository.TransactionManager,
	mailer adapter.Mailer,
	serverKey, currency string,
	referralReward int64,
	logger *zerolog.Logger,
) *reconcileUC {
	return &reconcileUC{
		payments:       payments,
		subs:           subs,
		users:          users,
		ledger:         ledger,
		tm:             tm,
		mailer:         mailer,
		serverKey:      serverKey,
		currency:       currency,
		referralReward: referralReward,
		log:            logger,
	}
}

func (u *reconcileUC) Process(ctx context.Context, n adapter.StatusNotification) (*ReconcileResult, error) {
	// Signature first, before any database read: notification content is
	// attacker-controlled until this passes, and must not be usable to probe
	// record existence.
	expected := security.NotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, u.serverKey)
	if !security.SignatureEqual(expected, n.SignatureKey) {
		metrics.IncWebhook("bad_signature")
		return nil, domain.ErrBadSignature
	}

	res := &ReconcileResult{}
	var user *model.User

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByOrderID(ctx, tx, n.OrderID)
		if err != nil {
			return err
		}
		res.Payment = p

		// Idempotency: gateways resend notifications. A transaction id we
		// have already recorded for this order means every side effect has
		// already happened exactly once.
		if p.TransactionID != nil && *p.TransactionID == n.TransactionID {
			res.Duplicate = true
			return nil
		}

		status, resolution := model.ResolveNotification(n.TransactionStatus, n.FraudStatus)
		res.Resolution = resolution

		raw, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		upd := repository.NotificationUpdate{
			Status:        status,
			TransactionID: n.TransactionID,
			PaymentMethod: n.PaymentType,
			RawPayload:    raw,
		}
		if resolution == model.ResolutionSuccess {
			now := time.Now()
			upd.PaidAt = &now
		}
		if err := u.payments.ApplyNotification(ctx, tx, p.ID, upd); err != nil {
			return err
		}
		p.Status = status

		switch resolution {
		case model.ResolutionSuccess:
			user, err = u.applySuccess(ctx, tx, p)
			return err
		case model.ResolutionFailure:
			return u.applyFailure(ctx, tx, p)
		default:
			return nil
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncWebhook("unknown_order")
		} else {
			metrics.IncWebhook("error")
		}
		return nil, err
	}

	if res.Duplicate {
		metrics.IncWebhook("duplicate")
		return res, nil
	}

	metrics.IncWebhook("processed")
	metrics.IncPayment(string(res.Payment.Status), string(res.Payment.Kind))

	// Receipt dispatch happens after commit. The webhook's job is durability
	// of the payment state, not guaranteed delivery of the email: a send
	// failure is logged and swallowed.
	if res.Resolution == model.ResolutionSuccess {
		metrics.AddPaymentRevenue(u.currency, res.Payment.Amount)
		if user != nil {
			u.sendReceipt(ctx, user, res.Payment)
		}
	}
	return res, nil
}

// applySuccess runs the success-side effects inside the reconcile
// transaction: tier upgrade, subscription grant, referral code creation,
// promo and referral bookkeeping.
func (u *reconcileUC) applySuccess(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) (*model.User, error) {
	user, err := u.users.FindByID(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}

	if p.Kind == model.PaymentKindSubscription {
		if err := u.grantMembership(ctx, tx, user, p); err != nil {
			return nil, err
		}
	}

	if p.PromoID != nil {
		if err := u.ledger.ApplyPromo(ctx, tx, *p.PromoID); err != nil {
			return nil, err
		}
	}
	if p.ReferralID != nil {
		if err := u.ledger.RecordReferralReward(ctx, tx, *p.ReferralID, p.UserID, p.ID, u.referralReward); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (u *reconcileUC) grantMembership(ctx context.Context, tx repository.Tx, user *model.User, p *model.PaymentRecord) error {
	if user.Tier != model.TierMember {
		next, err := model.TierTransition(user.Tier, model.TierMember)
		if err != nil {
			return err
		}
		if err := u.users.UpdateTier(ctx, tx, user.ID, next); err != nil {
			return err
		}
		user.Tier = next
	}

	if _, err := u.subs.FindActiveByUser(ctx, tx, user.ID); err == nil {
		// Already holds an active subscription (e.g. admin-granted); the
		// partial unique index would reject a second active row.
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	sub, err := model.NewSubscription(uuid.NewString(), user.ID, time.Now(), &p.ID)
	if err != nil {
		return err
	}
	if err := u.subs.Create(ctx, tx, sub); err != nil {
		return err
	}
	metrics.IncSubscriptionGranted("webhook")

	// First successful settlement makes the user a referrer.
	if _, err := u.ledger.EnsureReferralCode(ctx, tx, user.ID); err != nil {
		return err
	}
	return nil
}

// applyFailure handles a gateway reversal of an order that may already have
// been treated as settled: cancel the linked subscription and drop the tier
// back to free unless another active subscription keeps the user a member.
func (u *reconcileUC) applyFailure(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	sub, err := u.subs.FindByPaymentID(ctx, tx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // nothing was ever granted for this payment
		}
		return err
	}
	if sub.Status != model.SubscriptionStatusActive {
		return nil
	}
	if err := u.subs.Cancel(ctx, tx, sub.ID); err != nil {
		return err
	}
	metrics.IncSubscriptionCancelled("webhook")

	if _, err := u.subs.FindActiveByUser(ctx, tx, p.UserID); err == nil {
		return nil // another active subscription keeps the membership
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	user, err := u.users.FindByID(ctx, tx, p.UserID)
	if err != nil {
		return err
	}
	if user.Tier == model.TierFree {
		return nil
	}
	next, err := model.TierTransition(user.Tier, model.TierFree)
	if err != nil {
		return err
	}
	return u.users.UpdateTier(ctx, tx, user.ID, next)
}

func (u *reconcileUC) sendReceipt(ctx context.Context, user *model.User, p *model.PaymentRecord) {
	label := "StockUs membership"
	if p.Kind == model.PaymentKindWorkshop {
		label = "StockUs workshop"
	}
	paidAt := time.Now()
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}
	receipt := adapter.Receipt{
		OrderID:   p.OrderID,
		ItemLabel: label,
		Amount:    p.Amount,
		PaidAt:    paidAt,
	}
	if err := u.mailer.SendReceipt(ctx, user.Email, receipt); err != nil {
		u.log.Error().Err(err).Str("order_id", p.OrderID).Msg("receipt email failed")
	}
}
