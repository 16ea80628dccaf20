// Package order is the client for the backend order service.
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/logger"
	"storefront/internal/models"
)

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

// CreateOrder materializes a backend order from the user's cart. The items
// travel along as advisory input only; the backend is the authority on what
// is in the order and on the charged total.
func (c *Client) CreateOrder(ctx context.Context, userID string, items []models.LineItem) (*models.CreateOrderResponse, error) {
	url := fmt.Sprintf("%s/orders/%s/checkOut", c.baseURL, userID)
	c.logger.Debug("ORDER", fmt.Sprintf("Creating order: %s", url))

	body, err := json.Marshal(models.CreateOrderRequest{Items: items})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("ORDER", fmt.Sprintf("Order service error: %v", err))
		return nil, fmt.Errorf("order service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("order service returned status: %d", resp.StatusCode)
	}

	var created models.CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	c.logger.Info("ORDER", fmt.Sprintf("Order %s created for user %s (total %.2f)", created.OrderID, userID, created.TotalAmount))
	return &created, nil
}
