package adapter

import "context"

// Customer identifies the purchasing user to the gateway's hosted page.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// CheckoutSession is the handle returned by the gateway for a new
// hosted-checkout transaction.
type CheckoutSession struct {
	Token       string
	RedirectURL string
}

// StatusNotification carries the fields of an inbound gateway notification
// (or a status-poll response, which has the same shape).
type StatusNotification struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	StatusCode        string
	GrossAmount       string // decimal string, exactly as the gateway sends it
	SignatureKey      string // hex sha512 digest
}

// PaymentGateway creates remote checkout transactions and polls their status.
// CreateCheckout performs untrusted outbound I/O and must surface failure
// without retrying; retry policy belongs to the caller. Neither method
// touches local payment records.
type PaymentGateway interface {
	Name() string
	CreateCheckout(ctx context.Context, orderID string, grossAmount int64, customer Customer, itemLabel string) (*CheckoutSession, error)
	// PollStatus is the manual fallback for when the asynchronous
	// notification never arrives. Not part of the primary flow.
	PollStatus(ctx context.Context, orderID string) (*StatusNotification, error)
}
