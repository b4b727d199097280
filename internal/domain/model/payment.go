package model

import "time"

type PaymentKind string

const (
	PaymentKindSubscription PaymentKind = "subscription"
	PaymentKindWorkshop     PaymentKind = "workshop"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSettlement PaymentStatus = "settlement"
	PaymentStatusCapture    PaymentStatus = "capture"
	PaymentStatusDeny       PaymentStatus = "deny"
	PaymentStatusCancel     PaymentStatus = "cancel"
	PaymentStatusExpire     PaymentStatus = "expire"
	PaymentStatusRefund     PaymentStatus = "refund"
)

// Resolution classifies what a gateway notification means for downstream
// side effects. Inert notifications are recorded but change nothing else.
type Resolution int

const (
	ResolutionInert Resolution = iota
	ResolutionSuccess
	ResolutionFailure
)

// ResolveNotification maps the gateway's transaction-status vocabulary onto
// the internal status enum plus a side-effect classification.
// Only settlement, or capture with an accepted fraud check, resolve as success.
// Unrecognized statuses fall back to pending: unknown is never treated as paid.
func ResolveNotification(transactionStatus, fraudStatus string) (PaymentStatus, Resolution) {
	switch transactionStatus {
	case "settlement":
		return PaymentStatusSettlement, ResolutionSuccess
	case "capture":
		// A capture without an explicit fraud verdict stays inert, the same
		// as a challenge. Settlement or a later accepted capture completes it.
		if fraudStatus == "accept" {
			return PaymentStatusCapture, ResolutionSuccess
		}
		return PaymentStatusCapture, ResolutionInert
	case "deny":
		return PaymentStatusDeny, ResolutionFailure
	case "cancel":
		return PaymentStatusCancel, ResolutionFailure
	case "expire":
		return PaymentStatusExpire, ResolutionFailure
	case "refund", "partial_refund":
		return PaymentStatusRefund, ResolutionInert
	case "pending":
		return PaymentStatusPending, ResolutionInert
	default:
		return PaymentStatusPending, ResolutionInert
	}
}

// PaymentRecord is one attempted purchase. Created pending at checkout time,
// mutated only by the webhook reconciler (or the status-poll fallback),
// never deleted.
type PaymentRecord struct {
	ID             string // UUID
	OrderID        string // gateway order id, generated locally before the remote call
	UserID         string
	Kind           PaymentKind
	Status         PaymentStatus
	Amount         int64 // smallest currency unit, after discount
	OriginalAmount int64 // before discount
	PromoID        *string
	ReferralID     *string
	CohortID       *string
	TransactionID  *string // gateway transaction id; idempotency key once set
	PaymentMethod  *string
	RawNotification []byte // last notification payload, kept for audit
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
