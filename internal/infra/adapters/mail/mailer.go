package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stockus-platform/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Mailer = (*RESTMailer)(nil)

// RESTMailer delivers receipts through a transactional-mail HTTP API.
// Failures are the caller's to swallow: receipt delivery is never allowed to
// affect payment state.
type RESTMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewRESTMailer(endpoint, apiKey, from string) *RESTMailer {
	return &RESTMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *RESTMailer) SendReceipt(ctx context.Context, to string, r adapter.Receipt) error {
	payload := map[string]any{
		"from":    m.from,
		"to":      to,
		"subject": fmt.Sprintf("Payment receipt %s", r.OrderID),
		"template": "payment-receipt",
		"variables": map[string]any{
			"order_id": r.OrderID,
			"item":     r.ItemLabel,
			"amount":   r.Amount,
			"paid_at":  r.PaidAt.Format(time.RFC3339),
		},
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail api: http %d", resp.StatusCode)
	}
	return nil
}

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs instead of sending; used in dev mode and tests.
type NoopMailer struct {
	log *zerolog.Logger
}

func NewNoopMailer(logger *zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: logger}
}

func (m *NoopMailer) SendReceipt(ctx context.Context, to string, r adapter.Receipt) error {
	m.log.Info().Str("to", to).Str("order_id", r.OrderID).Int64("amount", r.Amount).Msg("receipt email (noop)")
	return nil
}
