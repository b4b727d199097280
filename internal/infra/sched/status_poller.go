// File: internal/infra/sched/status_poller.go
package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/adapter"
	"stockus-platform/internal/domain/ports/repository"
	"stockus-platform/internal/infra/security"
	"stockus-platform/internal/usecase"
)

// StatusPoller periodically scans stale pending payments and asks the
// gateway for their real status. This covers notifications that never
// arrived: a dropped webhook, a crash mid-reconcile, a gateway outage.
// Results are fed through the same reconcile path as webhooks, so the
// idempotency and side-effect rules hold either way.
type StatusPoller struct {
	reconcileUC usecase.ReconcileUseCase
	payments    repository.PaymentRepository
	gateway     adapter.PaymentGateway
	serverKey   string
	interval    time.Duration // how often to scan
	staleAfter  time.Duration // how old a pending payment must be to poll
	batch       int
	log         *zerolog.Logger
}

func NewStatusPoller(
	reconcileUC usecase.ReconcileUseCase,
	payments repository.PaymentRepository,
	gateway adapter.PaymentGateway,
	serverKey string,
	interval, staleAfter time.Duration,
	batch int,
	logger *zerolog.Logger,
) *StatusPoller {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	if batch <= 0 {
		batch = 200
	}
	return &StatusPoller{
		reconcileUC: reconcileUC,
		payments:    payments,
		gateway:     gateway,
		serverKey:   serverKey,
		interval:    interval,
		staleAfter:  staleAfter,
		batch:       batch,
		log:         logger,
	}
}

func (w *StatusPoller) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *StatusPoller) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("status-poller: list pending failed")
		return
	}
	for _, p := range pending {
		if ctx.Err() != nil {
			return
		}
		w.poll(ctx, p.OrderID)
	}
}

func (w *StatusPoller) poll(ctx context.Context, orderID string) {
	n, err := w.gateway.PollStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The gateway never saw this order: the customer abandoned the
			// checkout page before a transaction existed. Synthesize an
			// expiry so the record stops being polled.
			n = &adapter.StatusNotification{
				OrderID:           orderID,
				TransactionID:     "poll-expire-" + orderID,
				TransactionStatus: "expire",
				StatusCode:        "404",
				GrossAmount:       "0.00",
			}
		} else {
			w.log.Warn().Err(err).Str("order_id", orderID).Msg("status-poller: poll failed")
			return
		}
	}

	// Poll responses carry no signature; sign locally before handing the
	// notification to the reconciler, which verifies unconditionally.
	if n.SignatureKey == "" {
		n.SignatureKey = security.NotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, w.serverKey)
	}

	res, err := w.reconcileUC.Process(ctx, *n)
	if err != nil {
		w.log.Warn().Err(err).Str("order_id", orderID).Msg("status-poller: reconcile failed")
		return
	}
	if res.Resolution != model.ResolutionInert || res.Duplicate {
		w.log.Info().
			Str("order_id", orderID).
			Str("status", string(res.Payment.Status)).
			Bool("duplicate", res.Duplicate).
			Msg("status-poller: reconciled")
	}
}
