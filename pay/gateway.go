package pay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGateway is wrapped by every error the gateway API reports about a request.
var ErrGateway = errors.New("payment gateway error")

// Gateway creates orders on the hosted payment gateway.
type Gateway interface {
	// CreateOrder registers amount (minor units) and returns the gateway order id.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)
}

// RazorpayClient talks to the Razorpay orders API with basic auth.
type RazorpayClient struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	HTTP      *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		KeyID:     keyID,
		KeySecret: keySecret,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type gatewayOrder struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	payload, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt, Notes: notes})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("create gateway order: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var ge gatewayError
		if json.Unmarshal(body, &ge) == nil && ge.Error.Description != "" {
			return "", fmt.Errorf("%w: %s: %s", ErrGateway, ge.Error.Code, ge.Error.Description)
		}
		return "", fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var o gatewayOrder
	if err := json.Unmarshal(body, &o); err != nil {
		return "", fmt.Errorf("decode gateway order: %w", err)
	}
	if o.ID == "" {
		return "", fmt.Errorf("%w: empty order id", ErrGateway)
	}
	return o.ID, nil
}

// Signature is the hex HMAC-SHA256 the widget's callback must carry for a payment.
func Signature(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	want := Signature(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(signature)))
}
