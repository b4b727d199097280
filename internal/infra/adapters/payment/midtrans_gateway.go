// File: internal/infra/adapters/payment/midtrans_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*MidtransGateway)(nil)

// MidtransGateway implements adapter.PaymentGateway against the Snap API for
// checkout creation and the core API for status polls.
type MidtransGateway struct {
	serverKey string
	sandbox   bool
	client    *http.Client
}

func NewMidtransGateway(serverKey string, sandbox bool) (*MidtransGateway, error) {
	if serverKey == "" {
		return nil, errors.New("midtrans server key empty")
	}
	return &MidtransGateway{
		serverKey: serverKey,
		sandbox:   sandbox,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *MidtransGateway) Name() string { return "midtrans" }

func (g *MidtransGateway) snapEndpoint() string {
	if g.sandbox {
		return "https://app.sandbox.midtrans.com/snap/v1/transactions"
	}
	return "https://app.midtrans.com/snap/v1/transactions"
}

func (g *MidtransGateway) statusEndpoint(orderID string) string {
	base := "https://api.midtrans.com"
	if g.sandbox {
		base = "https://api.sandbox.midtrans.com"
	}
	return base + "/v2/" + orderID + "/status"
}

func (g *MidtransGateway) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(g.serverKey+":"))
}

// CreateCheckout creates a Snap transaction and returns the token plus the
// hosted-page redirect URL. No retry here: the caller owns retry policy.
func (g *MidtransGateway) CreateCheckout(ctx context.Context, orderID string, grossAmount int64, customer adapter.Customer, itemLabel string) (*adapter.CheckoutSession, error) {
	payload := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     orderID,
			"gross_amount": grossAmount,
		},
		"customer_details": map[string]any{
			"first_name": customer.Name,
			"email":      customer.Email,
		},
		"item_details": []map[string]any{
			{
				"id":       orderID,
				"price":    grossAmount,
				"quantity": 1,
				"name":     itemLabel,
			},
		},
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.snapEndpoint(), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", g.authHeader())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Token         string   `json:"token"`
		RedirectURL   string   `json:"redirect_url"`
		ErrorMessages []string `json:"error_messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || out.Token == "" {
		return nil, fmt.Errorf("midtrans snap request failed: http %d %v", resp.StatusCode, out.ErrorMessages)
	}
	return &adapter.CheckoutSession{Token: out.Token, RedirectURL: out.RedirectURL}, nil
}

// PollStatus fetches the current transaction status for an order. The
// response carries the same fields (including signature_key) as an
// asynchronous notification, so the reconciler can process it unchanged.
func (g *MidtransGateway) PollStatus(ctx context.Context, orderID string) (*adapter.StatusNotification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.statusEndpoint(orderID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", g.authHeader())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		StatusCode        string `json:"status_code"`
		StatusMessage     string `json:"status_message"`
		OrderID           string `json:"order_id"`
		TransactionID     string `json:"transaction_id"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
		PaymentType       string `json:"payment_type"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound || out.StatusCode == "404" {
		return nil, fmt.Errorf("%w: midtrans status: order %s: %s", domain.ErrNotFound, orderID, out.StatusMessage)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans status failed: http %d %s", resp.StatusCode, out.StatusMessage)
	}
	return &adapter.StatusNotification{
		OrderID:           out.OrderID,
		TransactionID:     out.TransactionID,
		TransactionStatus: out.TransactionStatus,
		FraudStatus:       out.FraudStatus,
		PaymentType:       out.PaymentType,
		StatusCode:        out.StatusCode,
		GrossAmount:       out.GrossAmount,
		SignatureKey:      out.SignatureKey,
	}, nil
}
