package repository

import (
	"context"
	"time"

	"stockus-platform/internal/domain/model"
)

// NotificationUpdate is the only mutation applied to a payment record after
// creation. RawPayload is stored verbatim for audit.
type NotificationUpdate struct {
	Status        model.PaymentStatus
	TransactionID string
	PaymentMethod string
	RawPayload    []byte
	PaidAt        *time.Time // set only on successful resolutions
}

type PaymentRepository interface {
	Create(ctx context.Context, tx Tx, p *model.PaymentRecord) error
	// FindByOrderID is the reconciler's lookup; the order id is the natural
	// key for inbound notifications. Locks the row when called inside a tx.
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.PaymentRecord, error)
	ApplyNotification(ctx context.Context, tx Tx, id string, upd NotificationUpdate) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.PaymentRecord, error)
	// ListPendingOlderThan feeds the status-poll fallback worker.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PaymentRecord, error)
}
