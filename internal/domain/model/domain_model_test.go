package model

import (
	"testing"
	"time"
)

func TestTierTransition(t *testing.T) {
	cases := []struct {
		from, to Tier
		wantErr  bool
	}{
		{TierFree, TierMember, false},
		{TierMember, TierFree, false},
		{TierFree, TierFree, false},
		{TierMember, TierMember, false},
		{TierAnonymous, TierMember, true},
		{TierFree, TierAnonymous, true},
	}
	for _, c := range cases {
		got, err := TierTransition(c.from, c.to)
		if c.wantErr {
			if err == nil {
				t.Errorf("TierTransition(%s, %s): expected error, got %s", c.from, c.to, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("TierTransition(%s, %s): unexpected error: %v", c.from, c.to, err)
		}
		if got != c.to {
			t.Errorf("TierTransition(%s, %s) = %s", c.from, c.to, got)
		}
	}
}

func TestTierAtLeast(t *testing.T) {
	if !TierMember.AtLeast(TierFree) {
		t.Error("member should satisfy free")
	}
	if TierFree.AtLeast(TierMember) {
		t.Error("free should not satisfy member")
	}
	if !TierAnonymous.AtLeast(TierAnonymous) {
		t.Error("anonymous should satisfy anonymous")
	}
}

func TestDiscountedAmount(t *testing.T) {
	if got := DiscountedAmount(2_500_000, 20); got != 2_000_000 {
		t.Errorf("20%% off 2,500,000 = %d, want 2,000,000", got)
	}
	// Out-of-range percent is a no-op, not an error.
	if got := DiscountedAmount(100, 150); got != 100 {
		t.Errorf("percent 150 should leave amount unchanged, got %d", got)
	}
	if got := DiscountedAmount(100, -5); got != 100 {
		t.Errorf("negative percent should leave amount unchanged, got %d", got)
	}
	// Round-half-up on the discount: 5% of 1010 = 50.5 -> 51.
	if got := DiscountedAmount(1010, 5); got != 959 {
		t.Errorf("5%% off 1010 = %d, want 959", got)
	}
	if got := DiscountedAmount(500, 100); got != 0 {
		t.Errorf("100%% off 500 = %d, want 0", got)
	}
}

func TestResolveNotification(t *testing.T) {
	cases := []struct {
		txStatus, fraud string
		wantStatus      PaymentStatus
		wantRes         Resolution
	}{
		{"settlement", "", PaymentStatusSettlement, ResolutionSuccess},
		{"capture", "accept", PaymentStatusCapture, ResolutionSuccess},
		{"capture", "", PaymentStatusCapture, ResolutionInert},
		{"capture", "challenge", PaymentStatusCapture, ResolutionInert},
		{"deny", "", PaymentStatusDeny, ResolutionFailure},
		{"cancel", "", PaymentStatusCancel, ResolutionFailure},
		{"expire", "", PaymentStatusExpire, ResolutionFailure},
		{"refund", "", PaymentStatusRefund, ResolutionInert},
		{"pending", "", PaymentStatusPending, ResolutionInert},
		{"something-new", "", PaymentStatusPending, ResolutionInert},
	}
	for _, c := range cases {
		status, res := ResolveNotification(c.txStatus, c.fraud)
		if status != c.wantStatus || res != c.wantRes {
			t.Errorf("ResolveNotification(%q, %q) = (%s, %d), want (%s, %d)",
				c.txStatus, c.fraud, status, res, c.wantStatus, c.wantRes)
		}
	}
}

func TestNewSubscriptionRunsOneYear(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sub, err := NewSubscription("sub-1", "user-1", start, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if !sub.EndAt.Equal(want) {
		t.Errorf("EndAt = %v, want %v", sub.EndAt, want)
	}
	if sub.Status != SubscriptionStatusActive {
		t.Errorf("new subscription status = %s", sub.Status)
	}
}

func TestPromoUsable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	one := 1

	base := PromoCode{Code: "LAUNCH", DiscountPercent: 20, Active: true}

	t.Run("active with open bounds is usable", func(t *testing.T) {
		p := base
		if !p.Usable(now) {
			t.Error("expected usable")
		}
	})
	t.Run("inactive flag wins", func(t *testing.T) {
		p := base
		p.Active = false
		if p.Usable(now) {
			t.Error("inactive code must not be usable")
		}
	})
	t.Run("expired", func(t *testing.T) {
		p := base
		p.ExpiresAt = &past
		if p.Usable(now) {
			t.Error("expired code must not be usable")
		}
	})
	t.Run("not yet valid", func(t *testing.T) {
		p := base
		p.ValidFrom = &future
		if p.Usable(now) {
			t.Error("code before its window must not be usable")
		}
	})
	t.Run("exhausted regardless of other fields", func(t *testing.T) {
		p := base
		p.MaxUses = &one
		p.CurrentUses = 1
		if p.Usable(now) {
			t.Error("exhausted code must not be usable")
		}
	})
}

func TestCohortOpenForEnrollment(t *testing.T) {
	price := int64(1_500_000)
	open := Cohort{Status: CohortStatusOpen, Price: &price}
	if !open.OpenForEnrollment() {
		t.Error("open priced cohort should be enrollable")
	}
	closed := Cohort{Status: CohortStatusClosed, Price: &price}
	if closed.OpenForEnrollment() {
		t.Error("closed cohort should not be enrollable")
	}
	unpriced := Cohort{Status: CohortStatusOpen}
	if unpriced.OpenForEnrollment() {
		t.Error("cohort without a price should not be enrollable")
	}
}
