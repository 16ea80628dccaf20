// Package payment is the client for the backend payment service, which
// fronts the external payment provider. The storefront never talks to the
// provider directly; intent creation and signature verification both go
// through this contract.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/logger"
	"storefront/internal/models"
)

const provider = "razorpay"

type Client struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func NewClient(baseURL string, client *http.Client, log *logger.Logger) *Client {
	if baseURL != "" && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{baseURL: baseURL, client: client, logger: log}
}

// CreateIntent asks the payment service for a provider-side order to open
// the widget against. Amount must be the backend-confirmed order total.
func (c *Client) CreateIntent(ctx context.Context, intentReq models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	url := fmt.Sprintf("%s/payments/create/%s", c.baseURL, provider)
	c.logger.Debug("PAYMENT", fmt.Sprintf("Creating payment intent: %s", url))

	body, err := json.Marshal(intentReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("PAYMENT", fmt.Sprintf("Payment service error: %v", err))
		return nil, fmt.Errorf("payment service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment service returned status: %d", resp.StatusCode)
	}

	var intent models.PaymentIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode intent response: %w", err)
	}

	c.logger.Info("PAYMENT", fmt.Sprintf("Payment intent %s created (provider order %s)", intent.PaymentIntentID, intent.ProviderOrderID))
	return &intent, nil
}

// Verify asks the payment service to check the provider's signature against
// the backend order. Only an explicit verified result means the payment is
// genuine; a clean response with verified=false is a real mismatch, not a
// transport problem.
func (c *Client) Verify(ctx context.Context, verifyReq models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	url := fmt.Sprintf("%s/payments/%s/verify", c.baseURL, provider)
	c.logger.Debug("PAYMENT", fmt.Sprintf("Verifying payment: %s", url))

	body, err := json.Marshal(verifyReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("PAYMENT", fmt.Sprintf("Payment service error: %v", err))
		return nil, fmt.Errorf("payment service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment service returned status: %d", resp.StatusCode)
	}

	var result models.VerifyPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	c.logger.Info("PAYMENT", fmt.Sprintf("Verification for order %s: verified=%v", verifyReq.OrderID, result.Verified))
	return &result, nil
}
