package models

import "time"

// CheckoutStatus is the orchestrator's state machine position.
type CheckoutStatus string

const (
	CheckoutIdle                  CheckoutStatus = "idle"
	CheckoutOrderCreating         CheckoutStatus = "order_creating"
	CheckoutOrderCreated          CheckoutStatus = "order_created"
	CheckoutPaymentIntentCreating CheckoutStatus = "payment_intent_creating"
	CheckoutAwaitingGateway       CheckoutStatus = "awaiting_gateway"
	CheckoutVerifying             CheckoutStatus = "verifying"
	CheckoutCompleted             CheckoutStatus = "completed"
	CheckoutFailed                CheckoutStatus = "failed"
	CheckoutCancelled             CheckoutStatus = "cancelled"
)

// Terminal reports whether the status ends a checkout attempt.
func (s CheckoutStatus) Terminal() bool {
	return s == CheckoutCompleted || s == CheckoutFailed || s == CheckoutCancelled
}

// CheckoutSession spans one checkout attempt, from order creation through
// payment verification. CartSnapshot is taken when the attempt starts so
// cart mutations during an in-flight checkout cannot change the amount
// already quoted to the payment provider.
type CheckoutSession struct {
	SessionID       string         `json:"session_id"`
	UserID          string         `json:"user_id"`
	CartSnapshot    Cart           `json:"cart_snapshot"`
	OrderID         string         `json:"order_id,omitempty"`
	TotalAmount     float64        `json:"total_amount,omitempty"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	ProviderOrderID string         `json:"provider_order_id,omitempty"`
	Status          CheckoutStatus `json:"status"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
}

// CheckoutEvent is published to Kafka on every checkout lifecycle change.
type CheckoutEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Checkout event types.
const (
	EventCheckoutStarted   = "checkout_started"
	EventOrderCreated      = "order_created"
	EventCheckoutCompleted = "checkout_completed"
	EventCheckoutCancelled = "checkout_cancelled"
	EventCheckoutFailed    = "checkout_failed"
)
