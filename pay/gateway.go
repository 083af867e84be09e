package pay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Order is a payment gateway's record of an intended charge. Amounts are in
// minor currency units (paise for INR).
type Order struct {
	OrderID  string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Refund struct {
	RefundID string `json:"id"`
}

// Gateway is the outbound payment provider. Amounts cross this boundary in
// minor units only.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (Order, error)
	Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (Refund, error)
}

// restGateway talks to a Razorpay-style orders API over HTTPS with basic auth.
type restGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewGatewayFromEnv builds the gateway client from GATEWAY_KEY_ID and
// GATEWAY_KEY_SECRET. The second return is false when the gateway is not
// configured; callers must treat that as a typed state, not an error.
func NewGatewayFromEnv() (Gateway, bool) {
	keyID := os.Getenv("GATEWAY_KEY_ID")
	keySecret := os.Getenv("GATEWAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, false
	}

	baseURL := os.Getenv("GATEWAY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}

	return &restGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, true
}

func (g *restGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (Order, error) {
	body := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		body["notes"] = notes
	}

	var order Order
	if err := g.post(ctx, "/orders", body, &order); err != nil {
		return Order{}, fmt.Errorf("gateway order creation failed: %w", err)
	}
	return order, nil
}

func (g *restGateway) Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (Refund, error) {
	body := map[string]interface{}{
		"amount": amountMinor,
	}
	if len(notes) > 0 {
		body["notes"] = notes
	}

	var refund Refund
	if err := g.post(ctx, "/payments/"+paymentID+"/refund", body, &refund); err != nil {
		return Refund{}, fmt.Errorf("gateway refund failed: %w", err)
	}
	return refund, nil
}

func (g *restGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&gwErr)
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, gwErr.Error.Description)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
