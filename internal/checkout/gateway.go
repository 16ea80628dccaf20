package checkout

import (
	"context"
	"fmt"

	"storefront/internal/logger"
)

// OpenParams is everything the hosted payment widget needs: the provider's
// order id, the confirmed amount in the provider's minor unit, and a
// contact prefill for the payment form.
type OpenParams struct {
	ProviderOrderID string `json:"provider_order_id"`
	AmountMinor     int64  `json:"amount_minor"`
	Currency        string `json:"currency"`
	KeyID           string `json:"key_id"`
	UserID          string `json:"user_id"`
}

// Gateway abstracts the externally hosted payment widget. Success and
// dismissal do not come back through this interface; they arrive as events
// delivered into the orchestrator.
type Gateway interface {
	// Available reports whether the widget can be opened at all. When it
	// cannot (script not loadable, gateway not configured), checkout takes
	// the synchronous fallback path.
	Available() bool
	Open(ctx context.Context, params OpenParams) error
}

// WidgetGateway is the production gateway: the widget itself runs in the
// user's browser, so opening it server-side means handing the open
// parameters to the UI and logging the attempt. It is available whenever a
// merchant key is configured.
type WidgetGateway struct {
	keyID  string
	logger *logger.Logger
}

func NewWidgetGateway(keyID string, log *logger.Logger) *WidgetGateway {
	return &WidgetGateway{keyID: keyID, logger: log}
}

func (g *WidgetGateway) Available() bool {
	return g.keyID != ""
}

func (g *WidgetGateway) Open(ctx context.Context, params OpenParams) error {
	g.logger.LogGateway("OPEN", fmt.Sprintf("provider order %s, %d %s minor units", params.ProviderOrderID, params.AmountMinor, params.Currency))
	return nil
}
