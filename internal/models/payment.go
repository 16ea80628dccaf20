package models

// CreateOrderRequest carries the client cart as advisory input. The backend
// builds the order from its own view of the user's cart and is the sole
// authority on the charged total.
type CreateOrderRequest struct {
	Items []LineItem `json:"items,omitempty"`
}

type CreateOrderResponse struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
}

type PaymentIntentRequest struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description,omitempty"`
}

type PaymentIntentResponse struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	ProviderOrderID string  `json:"provider_order_id"`
	Amount          float64 `json:"amount"`
}

type VerifyPaymentRequest struct {
	OrderID           string `json:"order_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
	ProviderSignature string `json:"provider_signature"`
}

type VerifyPaymentResponse struct {
	Verified bool `json:"verified"`
}

// GatewayResult is the payload the payment widget's success callback
// delivers: the provider's payment id plus the signature proving the
// completion genuinely originated from the provider.
type GatewayResult struct {
	ProviderPaymentID string `json:"provider_payment_id"`
	ProviderSignature string `json:"provider_signature"`
}
