package model

import (
	"strings"
	"time"
)

// PromoCode is an admin-created discount code. current uses only ever grows,
// and only via the atomic conditional increment in the promo repository.
type PromoCode struct {
	ID              string // UUID
	Code            string // stored upper-case
	DiscountPercent int    // 0..100
	MaxUses         *int   // nil = unlimited
	CurrentUses     int
	ValidFrom       *time.Time
	ExpiresAt       *time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizePromoCode applies the canonical form used on both write and read
// paths: trimmed, upper-case.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Usable reports whether the code can be redeemed at the given instant.
func (p *PromoCode) Usable(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return false
	}
	return true
}

// DiscountedAmount returns amount minus a percent discount, rounding the
// discount half-up. A percent outside [0,100] is clamped to a no-op rather
// than reported as an error.
func DiscountedAmount(amount int64, percent int) int64 {
	if percent < 0 || percent > 100 {
		return amount
	}
	discount := (amount*int64(percent) + 50) / 100
	return amount - discount
}
