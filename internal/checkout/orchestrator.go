// Package checkout drives a cart through the multi-step payment protocol:
// order creation, payment-intent creation, the external payment widget, and
// server-side verification. One orchestrator owns one user's checkout.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/money"
)

var (
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrEmptyCart          = errors.New("cannot check out an empty cart")
	ErrNoActiveCheckout   = errors.New("no active checkout")
	ErrNotAwaitingGateway = errors.New("checkout is not awaiting the payment gateway")
)

// OrderClient materializes a backend order from the cart.
type OrderClient interface {
	CreateOrder(ctx context.Context, userID string, items []models.LineItem) (*models.CreateOrderResponse, error)
}

// PaymentClient fronts the payment provider via the backend.
type PaymentClient interface {
	CreateIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error)
	Verify(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error)
}

// CartStore is the slice of the cart the orchestrator needs: a consistent
// snapshot at checkout start and a clear on verified completion.
type CartStore interface {
	Snapshot() models.Cart
	Clear(ctx context.Context) error
}

// SessionLock guarantees at most one in-flight checkout per user across
// instances.
type SessionLock interface {
	Acquire(ctx context.Context, userID, sessionID string) (bool, error)
	Release(ctx context.Context, userID, sessionID string) error
}

// EventPublisher streams checkout lifecycle events.
type EventPublisher interface {
	PublishCheckoutEvent(event models.CheckoutEvent) error
}

type Orchestrator struct {
	mu sync.Mutex

	userID   string
	cart     CartStore
	orders   OrderClient
	payments PaymentClient
	gateway  Gateway
	lock     SessionLock
	events   EventPublisher
	logger   *logger.Logger

	currency    string
	gatewayKey  string
	checkoutTTL time.Duration

	session     *models.CheckoutSession
	lastMessage string
	timer       *time.Timer
}

type Options struct {
	Currency    string
	GatewayKey  string
	CheckoutTTL time.Duration
}

func NewOrchestrator(userID string, cart CartStore, orders OrderClient, payments PaymentClient,
	gateway Gateway, lock SessionLock, events EventPublisher, log *logger.Logger, opts Options) *Orchestrator {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.CheckoutTTL <= 0 {
		opts.CheckoutTTL = 10 * time.Minute
	}
	return &Orchestrator{
		userID:      userID,
		cart:        cart,
		orders:      orders,
		payments:    payments,
		gateway:     gateway,
		lock:        lock,
		events:      events,
		logger:      log,
		currency:    opts.Currency,
		gatewayKey:  opts.GatewayKey,
		checkoutTTL: opts.CheckoutTTL,
	}
}

// Start begins a checkout attempt: snapshots the cart, creates a backend
// order, requests a payment intent and opens the gateway widget. The cart
// itself is left intact until verification succeeds. Failures before the
// widget opens return the orchestrator to idle and are retryable.
func (o *Orchestrator) Start(ctx context.Context) (*models.CheckoutSession, error) {
	o.mu.Lock()
	if o.session != nil && !o.session.Status.Terminal() {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}

	snapshot := o.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}

	sessionID := uuid.NewString()
	acquired, err := o.lock.Acquire(ctx, o.userID, sessionID)
	if err != nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("checkout lock error: %w", err)
	}
	if !acquired {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}

	session := &models.CheckoutSession{
		SessionID:    sessionID,
		UserID:       o.userID,
		CartSnapshot: snapshot,
		Status:       models.CheckoutOrderCreating,
		StartedAt:    time.Now(),
	}
	o.session = session
	o.lastMessage = ""
	o.mu.Unlock()

	o.logger.LogCheckout("START", sessionID, fmt.Sprintf("user %s, %d items, quoted %.2f", o.userID, snapshot.TotalItems, snapshot.TotalPrice))
	o.publish(models.EventCheckoutStarted, sessionID, "", snapshot.TotalPrice, "")

	created, err := o.orders.CreateOrder(ctx, o.userID, snapshot.Items)
	if err != nil {
		o.resetToIdle(ctx, sessionID, fmt.Sprintf("order creation failed: %v", err))
		return nil, fmt.Errorf("order creation failed: %w", err)
	}

	o.mu.Lock()
	session.OrderID = created.OrderID
	// The backend-confirmed total is the amount charged; it is carried
	// verbatim, never recomputed from the snapshot.
	session.TotalAmount = created.TotalAmount
	session.Status = models.CheckoutOrderCreated
	o.mu.Unlock()

	o.logger.LogCheckout("ORDER", sessionID, fmt.Sprintf("order %s, confirmed total %.2f", created.OrderID, created.TotalAmount))
	o.publish(models.EventOrderCreated, sessionID, created.OrderID, created.TotalAmount, "")

	if !o.gateway.Available() {
		return o.completeWithoutGateway(ctx, session)
	}

	o.setStatus(sessionID, models.CheckoutPaymentIntentCreating)

	intent, err := o.payments.CreateIntent(ctx, models.PaymentIntentRequest{
		OrderID:     created.OrderID,
		Amount:      created.TotalAmount,
		Currency:    o.currency,
		Description: fmt.Sprintf("%d tickets for user %s", snapshot.TotalItems, o.userID),
	})
	if err != nil {
		o.resetToIdle(ctx, sessionID, fmt.Sprintf("payment intent creation failed: %v", err))
		return nil, fmt.Errorf("payment intent creation failed: %w", err)
	}

	o.mu.Lock()
	session.PaymentIntentID = intent.PaymentIntentID
	session.ProviderOrderID = intent.ProviderOrderID
	session.Status = models.CheckoutAwaitingGateway
	o.mu.Unlock()

	if err := o.gateway.Open(ctx, OpenParams{
		ProviderOrderID: intent.ProviderOrderID,
		AmountMinor:     money.MinorUnits(created.TotalAmount),
		Currency:        o.currency,
		KeyID:           o.gatewayKey,
		UserID:          o.userID,
	}); err != nil {
		o.logger.Warn("CHECKOUT", fmt.Sprintf("Gateway failed to open, falling back: %v", err))
		return o.completeWithoutGateway(ctx, session)
	}

	o.armTimeout(sessionID)
	o.logger.LogCheckout("AWAITING", sessionID, fmt.Sprintf("widget opened for provider order %s", intent.ProviderOrderID))
	return o.sessionCopy(), nil
}

// HandleGatewaySuccess is the widget's completion callback. It carries the
// provider payment id and signature into verification. Verification
// failures are terminal: re-querying a provider's signature is not safe to
// blindly repeat, so the user is routed to support instead.
func (o *Orchestrator) HandleGatewaySuccess(ctx context.Context, result models.GatewayResult) error {
	o.mu.Lock()
	session := o.session
	if session == nil || session.Status != models.CheckoutAwaitingGateway {
		o.mu.Unlock()
		return ErrNotAwaitingGateway
	}
	session.Status = models.CheckoutVerifying
	o.stopTimerLocked()
	sessionID := session.SessionID
	o.mu.Unlock()

	o.logger.LogCheckout("VERIFY", sessionID, fmt.Sprintf("provider payment %s", result.ProviderPaymentID))

	verification, err := o.payments.Verify(ctx, models.VerifyPaymentRequest{
		OrderID:           session.OrderID,
		ProviderPaymentID: result.ProviderPaymentID,
		ProviderSignature: result.ProviderSignature,
	})
	if err != nil {
		o.failTerminal(ctx, sessionID, "payment verification could not be completed; please contact support")
		return fmt.Errorf("payment verification failed: %w", err)
	}
	if !verification.Verified {
		o.failTerminal(ctx, sessionID, "payment could not be verified; please contact support before retrying")
		return nil
	}

	if err := o.cart.Clear(ctx); err != nil {
		// The payment is verified either way; a failed cart clear must not
		// fail the checkout.
		o.logger.Error("CHECKOUT", fmt.Sprintf("Failed to clear cart after verified payment: %v", err))
	}

	o.mu.Lock()
	session.Status = models.CheckoutCompleted
	o.mu.Unlock()

	o.releaseLock(ctx, sessionID)
	o.logger.LogCheckout("COMPLETED", sessionID, fmt.Sprintf("order %s paid and verified", session.OrderID))
	o.publish(models.EventCheckoutCompleted, sessionID, session.OrderID, session.TotalAmount, "")
	return nil
}

// HandleGatewayDismiss is the widget's dismissal callback. Dismissal after
// a success has already begun verifying is ignored; at most one of the two
// callbacks wins. On a real dismissal the session is discarded, the cart is
// untouched and the orchestrator is idle again.
func (o *Orchestrator) HandleGatewayDismiss(ctx context.Context) error {
	o.mu.Lock()
	session := o.session
	if session == nil || session.Status != models.CheckoutAwaitingGateway {
		o.mu.Unlock()
		return nil
	}
	sessionID := session.SessionID
	o.stopTimerLocked()
	o.session = nil
	o.lastMessage = "checkout cancelled; your cart is unchanged"
	o.mu.Unlock()

	o.releaseLock(ctx, sessionID)
	o.logger.LogCheckout("DISMISSED", sessionID, "widget dismissed, cart preserved")
	o.publish(models.EventCheckoutCancelled, sessionID, session.OrderID, 0, "gateway dismissed")
	return nil
}

// Cancel is the user-driven cancellation. While awaiting the gateway it
// behaves like a dismissal; a terminal session is simply discarded.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	session := o.session
	if session == nil {
		o.mu.Unlock()
		return ErrNoActiveCheckout
	}
	if session.Status.Terminal() {
		o.session = nil
		o.mu.Unlock()
		return nil
	}
	if session.Status != models.CheckoutAwaitingGateway {
		o.mu.Unlock()
		return ErrCheckoutInProgress
	}
	o.mu.Unlock()

	return o.HandleGatewayDismiss(ctx)
}

// Status returns the current state machine position, idle when no session
// exists.
func (o *Orchestrator) Status() models.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return models.CheckoutIdle
	}
	return o.session.Status
}

// Session returns a copy of the current session, or nil when idle.
func (o *Orchestrator) Session() *models.CheckoutSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionCopyLocked()
}

// LastMessage is the user-visible outcome of the most recent attempt that
// ended without a session (transient failure or cancellation).
func (o *Orchestrator) LastMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastMessage
}

// completeWithoutGateway is the degraded path for environments where the
// widget cannot load: the backend order exists, payment completes
// synchronously, and the cart is cleared exactly as on the verified path.
func (o *Orchestrator) completeWithoutGateway(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	o.logger.Warn("CHECKOUT", fmt.Sprintf("Gateway unavailable, completing order %s synchronously", session.OrderID))

	if err := o.cart.Clear(ctx); err != nil {
		o.logger.Error("CHECKOUT", fmt.Sprintf("Failed to clear cart on fallback completion: %v", err))
	}

	o.mu.Lock()
	session.Status = models.CheckoutCompleted
	o.mu.Unlock()

	o.releaseLock(ctx, session.SessionID)
	o.logger.LogCheckout("COMPLETED", session.SessionID, fmt.Sprintf("order %s completed without gateway", session.OrderID))
	o.publish(models.EventCheckoutCompleted, session.SessionID, session.OrderID, session.TotalAmount, "gateway unavailable")
	return o.sessionCopy(), nil
}

// resetToIdle handles retryable failures: the session is discarded, the
// cart stays intact and the failure is surfaced as a message.
func (o *Orchestrator) resetToIdle(ctx context.Context, sessionID, reason string) {
	o.mu.Lock()
	if o.session == nil || o.session.SessionID != sessionID {
		o.mu.Unlock()
		return
	}
	orderID := o.session.OrderID
	o.session = nil
	o.lastMessage = reason
	o.stopTimerLocked()
	o.mu.Unlock()

	o.releaseLock(ctx, sessionID)
	o.logger.Warn("CHECKOUT", fmt.Sprintf("Checkout %s returned to idle: %s", sessionID, reason))
	o.publish(models.EventCheckoutFailed, sessionID, orderID, 0, reason)
}

// failTerminal handles non-retryable failures: the session stays around in
// a failed state so the reason is visible, and the cart is NOT cleared.
func (o *Orchestrator) failTerminal(ctx context.Context, sessionID, reason string) {
	o.mu.Lock()
	if o.session == nil || o.session.SessionID != sessionID {
		o.mu.Unlock()
		return
	}
	o.session.Status = models.CheckoutFailed
	o.session.FailureReason = reason
	orderID := o.session.OrderID
	o.stopTimerLocked()
	o.mu.Unlock()

	o.releaseLock(ctx, sessionID)
	o.logger.Error("CHECKOUT", fmt.Sprintf("Checkout %s failed terminally: %s", sessionID, reason))
	o.publish(models.EventCheckoutFailed, sessionID, orderID, 0, reason)
}

func (o *Orchestrator) setStatus(sessionID string, status models.CheckoutStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil && o.session.SessionID == sessionID {
		o.session.Status = status
	}
}

// armTimeout bounds the gateway wait so a session cannot sit in
// awaiting_gateway forever.
func (o *Orchestrator) armTimeout(sessionID string) {
	o.mu.Lock()
	o.stopTimerLocked()
	o.timer = time.AfterFunc(o.checkoutTTL, func() {
		o.mu.Lock()
		expired := o.session != nil && o.session.SessionID == sessionID &&
			o.session.Status == models.CheckoutAwaitingGateway
		o.mu.Unlock()
		if expired {
			o.failTerminal(context.Background(), sessionID, "payment gateway interaction timed out")
		}
	})
	o.mu.Unlock()
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) releaseLock(ctx context.Context, sessionID string) {
	if err := o.lock.Release(ctx, o.userID, sessionID); err != nil {
		o.logger.Error("CHECKOUT", fmt.Sprintf("Failed to release checkout lock for %s: %v", sessionID, err))
	}
}

func (o *Orchestrator) publish(eventType, sessionID, orderID string, amount float64, reason string) {
	event := models.CheckoutEvent{
		Type:      eventType,
		SessionID: sessionID,
		UserID:    o.userID,
		OrderID:   orderID,
		Amount:    amount,
		Reason:    reason,
		Timestamp: time.Now(),
	}
	if err := o.events.PublishCheckoutEvent(event); err != nil {
		o.logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for session %s: %v", eventType, sessionID, err))
	}
}

func (o *Orchestrator) sessionCopy() *models.CheckoutSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionCopyLocked()
}

func (o *Orchestrator) sessionCopyLocked() *models.CheckoutSession {
	if o.session == nil {
		return nil
	}
	copied := *o.session
	return &copied
}
