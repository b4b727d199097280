//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/adapter"
	"stockus-platform/internal/domain/ports/repository"
	"stockus-platform/internal/usecase"
)

const testSubscriptionPrice = 2_500_000

type checkoutDeps struct {
	payments *MockPaymentRepo
	subs     *MockSubscriptionRepo
	users    *MockUserRepo
	cohorts  *MockCohortRepo
	promos   *MockPromoRepo
	refs     *MockReferralRepo
	gateway  *MockPaymentGateway
	uc       usecase.CheckoutUseCase
}

func newCheckoutDeps() *checkoutDeps {
	d := &checkoutDeps{
		payments: NewMockPaymentRepo(),
		subs:     NewMockSubscriptionRepo(),
		users:    NewMockUserRepo(),
		cohorts:  NewMockCohortRepo(),
		promos:   NewMockPromoRepo(),
		refs:     NewMockReferralRepo(),
		gateway:  &MockPaymentGateway{},
	}
	logger := newTestLogger()
	ledger := usecase.NewLedgerUseCase(d.promos, d.refs, logger)
	d.uc = usecase.NewCheckoutUseCase(
		d.payments, d.subs, d.users, d.cohorts, ledger, d.gateway,
		NewMockTxManager(), testSubscriptionPrice, logger,
	)
	return d
}

func (d *checkoutDeps) seedUser(t *testing.T, id string, tier model.Tier) *model.User {
	t.Helper()
	u, err := model.NewUser(id, id+"@example.com", "User "+id, "x")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	u.Tier = tier
	if err := d.users.Save(context.Background(), nil, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestCheckout_Subscription(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a pending payment and a checkout session", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)

		var created *model.PaymentRecord
		d.payments.CreateFunc = func(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
			created = p
			return nil
		}

		// --- Act ---
		res, err := d.uc.SubscriptionCheckout(ctx, "user-1", "", "")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Token == "" || res.RedirectURL == "" {
			t.Error("expected a gateway session")
		}
		if created == nil {
			t.Fatal("expected a pending payment record")
		}
		if created.Status != model.PaymentStatusPending {
			t.Errorf("expected pending status, got %q", created.Status)
		}
		if created.Amount != testSubscriptionPrice {
			t.Errorf("expected list price %d, got %d", testSubscriptionPrice, created.Amount)
		}
		if !strings.HasPrefix(created.OrderID, "SUB-") || len(created.OrderID) != 24 {
			t.Errorf("unexpected order id %q", created.OrderID)
		}
	})

	t.Run("should reject a user who is already a member", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierMember)

		// --- Act ---
		_, err := d.uc.SubscriptionCheckout(ctx, "user-1", "", "")

		// --- Assert ---
		if !errors.Is(err, domain.ErrAlreadyMember) {
			t.Fatalf("expected ErrAlreadyMember, got: %v", err)
		}
	})

	t.Run("should apply a promo discount to the charged amount", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		promo := &model.PromoCode{ID: "promo-1", Code: "LAUNCH20", DiscountPercent: 20, Active: true}
		if err := d.promos.Create(ctx, nil, promo); err != nil {
			t.Fatal(err)
		}

		var created *model.PaymentRecord
		d.payments.CreateFunc = func(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
			created = p
			return nil
		}

		// --- Act ---
		// Lower-cased input must match the upper-case stored code.
		res, err := d.uc.SubscriptionCheckout(ctx, "user-1", "launch20", "")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if created.Amount != 2_000_000 {
			t.Errorf("expected discounted amount 2000000, got %d", created.Amount)
		}
		if res.Amount != 2_000_000 || res.OriginalAmount != testSubscriptionPrice {
			t.Errorf("expected result amounts 2000000/%d, got %d/%d",
				testSubscriptionPrice, res.Amount, res.OriginalAmount)
		}
		if res.Discount != testSubscriptionPrice-2_000_000 {
			t.Errorf("expected discount %d, got %d", testSubscriptionPrice-2_000_000, res.Discount)
		}
		if created.OriginalAmount != testSubscriptionPrice {
			t.Errorf("expected original amount kept, got %d", created.OriginalAmount)
		}
		if created.PromoID == nil || *created.PromoID != "promo-1" {
			t.Error("expected promo id recorded on the payment")
		}
		if d.promos.Get("promo-1").CurrentUses != 0 {
			t.Error("checkout must not consume promo usage; that happens at settlement")
		}
	})

	t.Run("should reject an expired promo code", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		past := time.Now().Add(-time.Hour)
		promo := &model.PromoCode{ID: "promo-1", Code: "OLD", DiscountPercent: 50, Active: true, ExpiresAt: &past}
		if err := d.promos.Create(ctx, nil, promo); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		_, err := d.uc.SubscriptionCheckout(ctx, "user-1", "OLD", "")

		// --- Assert ---
		if !errors.Is(err, domain.ErrPromoInvalid) {
			t.Fatalf("expected ErrPromoInvalid, got: %v", err)
		}
	})

	t.Run("should reject a user's own referral code", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		ref := &model.Referral{ID: "ref-1", UserID: "user-1", Code: "SELFCODE"}
		if err := d.refs.Create(ctx, nil, ref); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		_, err := d.uc.SubscriptionCheckout(ctx, "user-1", "", "SELFCODE")

		// --- Assert ---
		if !errors.Is(err, domain.ErrSelfReferral) {
			t.Fatalf("expected ErrSelfReferral, got: %v", err)
		}
	})

	t.Run("should leave no record when the gateway call fails", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		d.gateway.CreateCheckoutFunc = func(ctx context.Context, orderID string, grossAmount int64, customer adapter.Customer, itemLabel string) (*adapter.CheckoutSession, error) {
			return nil, errors.New("gateway 503")
		}

		// --- Act ---
		_, err := d.uc.SubscriptionCheckout(ctx, "user-1", "", "")

		// --- Assert ---
		if err == nil {
			t.Fatal("expected an error")
		}
		history, _ := d.payments.ListByUser(ctx, nil, "user-1", 10)
		if len(history) != 0 {
			t.Errorf("gateway failure must leave no payment record, found %d", len(history))
		}
	})
}

func TestCheckout_Workshop(t *testing.T) {
	ctx := context.Background()
	price := int64(1_000_000)

	t.Run("should check out an open cohort at its own price", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		cohort := &model.Cohort{ID: "cohort-1", Title: "Valuation Workshop", Price: &price, Status: model.CohortStatusOpen}
		if err := d.cohorts.Save(ctx, nil, cohort); err != nil {
			t.Fatal(err)
		}

		var created *model.PaymentRecord
		d.payments.CreateFunc = func(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
			created = p
			return nil
		}

		// --- Act ---
		res, err := d.uc.WorkshopCheckout(ctx, "user-1", "cohort-1", "")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Amount != price {
			t.Errorf("expected cohort price %d, got %d", price, res.Amount)
		}
		if created.Kind != model.PaymentKindWorkshop {
			t.Errorf("expected workshop kind, got %q", created.Kind)
		}
		if created.CohortID == nil || *created.CohortID != "cohort-1" {
			t.Error("expected cohort id on the payment")
		}
		if !strings.HasPrefix(created.OrderID, "WS-") {
			t.Errorf("unexpected order id %q", created.OrderID)
		}
	})

	t.Run("should allow members to buy workshops", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierMember)
		cohort := &model.Cohort{ID: "cohort-1", Title: "Valuation Workshop", Price: &price, Status: model.CohortStatusOpen}
		if err := d.cohorts.Save(ctx, nil, cohort); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		_, err := d.uc.WorkshopCheckout(ctx, "user-1", "cohort-1", "")

		// --- Assert ---
		if err != nil {
			t.Fatalf("membership must not block workshop purchases, got: %v", err)
		}
	})

	t.Run("should reject a cohort that is not open", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		cohort := &model.Cohort{ID: "cohort-1", Title: "Closed Workshop", Price: &price, Status: model.CohortStatusClosed}
		if err := d.cohorts.Save(ctx, nil, cohort); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		_, err := d.uc.WorkshopCheckout(ctx, "user-1", "cohort-1", "")

		// --- Assert ---
		if !errors.Is(err, domain.ErrCohortNotOpen) {
			t.Fatalf("expected ErrCohortNotOpen, got: %v", err)
		}
	})

	t.Run("should reject an open cohort without a price", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		d.seedUser(t, "user-1", model.TierFree)
		cohort := &model.Cohort{ID: "cohort-1", Title: "Unpriced", Status: model.CohortStatusOpen}
		if err := d.cohorts.Save(ctx, nil, cohort); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		_, err := d.uc.WorkshopCheckout(ctx, "user-1", "cohort-1", "")

		// --- Assert ---
		if !errors.Is(err, domain.ErrCohortNotOpen) {
			t.Fatalf("expected ErrCohortNotOpen, got: %v", err)
		}
	})
}

func TestCheckout_PrevalidatePromo(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the promo without mutating anything", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()
		promo := &model.PromoCode{ID: "promo-1", Code: "LAUNCH20", DiscountPercent: 20, Active: true}
		if err := d.promos.Create(ctx, nil, promo); err != nil {
			t.Fatal(err)
		}

		// --- Act ---
		p, err := d.uc.PrevalidatePromo(ctx, " launch20 ")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if p.DiscountPercent != 20 {
			t.Errorf("expected 20 percent, got %d", p.DiscountPercent)
		}
		if d.promos.Get("promo-1").CurrentUses != 0 {
			t.Error("prevalidation must not consume usage")
		}
	})

	t.Run("should reject an unknown code", func(t *testing.T) {
		// --- Arrange ---
		d := newCheckoutDeps()

		// --- Act ---
		_, err := d.uc.PrevalidatePromo(ctx, "NOPE")

		// --- Assert ---
		if !errors.Is(err, domain.ErrPromoInvalid) {
			t.Fatalf("expected ErrPromoInvalid, got: %v", err)
		}
	})
}
