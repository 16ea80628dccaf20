// Package catalog is the read-only client for the event catalog service.
package catalog

import (
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
	return &Client{baseURL: trimSlash(baseURL), client: client, logger: log}
}

// GetEventByID fetches an event with its ticket types. A 404 returns nil
// without an error.
func (c *Client) GetEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	url := fmt.Sprintf("%s/events/%s", c.baseURL, eventID)
	c.logger.Debug("CATALOG", fmt.Sprintf("Fetching event: %s", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("CATALOG", fmt.Sprintf("Catalog service error: %v", err))
		return nil, fmt.Errorf("catalog service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Warn("CATALOG", fmt.Sprintf("Event not found: %s", eventID))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status: %d", resp.StatusCode)
	}

	var event models.Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}
	return &event, nil
}

func trimSlash(url string) string {
	if url != "" && url[len(url)-1] == '/' {
		return url[:len(url)-1]
	}
	return url
}
