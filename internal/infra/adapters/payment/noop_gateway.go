package payment

import (
	"context"
	"fmt"
	"sync"

	"stockus-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is an in-memory gateway for dev mode and tests.
type NoopGateway struct {
	mu      sync.Mutex
	seq     int64
	intents map[string]int64 // orderID -> gross amount
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{intents: make(map[string]int64)}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) CreateCheckout(ctx context.Context, orderID string, grossAmount int64, customer adapter.Customer, itemLabel string) (*adapter.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.intents[orderID] = grossAmount
	token := fmt.Sprintf("noop-%d", g.seq)
	return &adapter.CheckoutSession{
		Token:       token,
		RedirectURL: "https://example.test/pay/" + token,
	}, nil
}

func (g *NoopGateway) PollStatus(ctx context.Context, orderID string) (*adapter.StatusNotification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.intents[orderID]
	if !ok {
		return nil, fmt.Errorf("noop: order %s not found", orderID)
	}
	return &adapter.StatusNotification{
		OrderID:           orderID,
		TransactionStatus: "pending",
		StatusCode:        "201",
		GrossAmount:       fmt.Sprintf("%d.00", amount),
	}, nil
}
