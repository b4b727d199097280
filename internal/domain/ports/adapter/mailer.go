package adapter

import (
	"context"
	"time"
)

// Receipt is the payload of a post-payment receipt email.
type Receipt struct {
	OrderID   string
	ItemLabel string
	Amount    int64
	PaidAt    time.Time
}

// Mailer dispatches transactional email. Callers treat failures as
// non-critical: a lost receipt never rolls back payment state.
type Mailer interface {
	SendReceipt(ctx context.Context, to string, r Receipt) error
}
