// mockbackend is a development stand-in for the three collaborators the
// storefront drives: the event catalog, the order service and the payment
// service. It implements the Razorpay-style signature scheme so the full
// checkout protocol, verification included, can be exercised locally.
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/utils"
)

// serviceFeeRate matches the production backend's checkout fee.
const serviceFeeRate = 0.05

type backend struct {
	mu      sync.Mutex
	secret  []byte
	orders  map[string]float64 // orderID -> confirmed total
	intents map[string]string  // providerOrderID -> orderID
}

func main() {
	_ = godotenv.Load()

	secret := os.Getenv("MOCK_PROVIDER_SECRET")
	if secret == "" {
		secret = "storefront-dev-secret"
	}

	b := &backend{
		secret:  []byte(secret),
		orders:  make(map[string]float64),
		intents: make(map[string]string),
	}

	r := gin.Default()
	api := r.Group("/api")
	{
		api.GET("/events/:eventId", b.getEvent)
		api.POST("/orders/:userId/checkOut", b.createOrder)
		api.POST("/payments/create/razorpay", b.createIntent)
		api.POST("/payments/razorpay/verify", b.verifyPayment)
		api.POST("/payments/razorpay/simulate", b.simulateWidget)
	}

	port := os.Getenv("MOCK_BACKEND_PORT")
	if port == "" {
		port = ":8081"
	}
	if err := r.Run(port); err != nil {
		panic(err)
	}
}

// getEvent serves a canned event so the demand endpoint has data to work
// with locally.
func (b *backend) getEvent(c *gin.Context) {
	eventID := c.Param("eventId")
	c.JSON(http.StatusOK, models.Event{
		ID:        eventID,
		Name:      "Summer Music Festival",
		Venue:     "Riverside Arena",
		StartTime: time.Now().Add(30 * 24 * time.Hour),
		TicketTypes: []models.TicketType{
			{
				ID:                eventID + "-general",
				Name:              "General Admission",
				CurrentPrice:      500,
				BasePrice:         500,
				TotalQuantity:     1000,
				RemainingQuantity: 620,
				PricingStrategy:   "DEFAULT",
			},
			{
				ID:                eventID + "-vip",
				Name:              "VIP",
				CurrentPrice:      2100,
				BasePrice:         1800,
				TotalQuantity:     100,
				RemainingQuantity: 12,
				PricingStrategy:   "DEMAND_BASED",
			},
		},
	})
}

// createOrder builds an order from the advisory cart in the request body
// and returns the authoritative total: subtotal plus the service fee.
func (b *backend) createOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	subtotal := 0.0
	for _, item := range req.Items {
		subtotal += money.LineTotal(item.UnitPrice, item.Quantity)
	}
	total := money.Round2(subtotal * (1 + serviceFeeRate))

	orderID := uuid.NewString()
	b.mu.Lock()
	b.orders[orderID] = total
	b.mu.Unlock()

	c.JSON(http.StatusCreated, models.CreateOrderResponse{
		OrderID:     orderID,
		TotalAmount: total,
	})
}

func (b *backend) createIntent(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	b.mu.Lock()
	total, exists := b.orders[req.OrderID]
	b.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Unknown order", req.OrderID))
		return
	}

	// The amount from the order record wins; the client cannot choose what
	// it is charged.
	providerOrderID := utils.GenerateProviderOrderID()
	b.mu.Lock()
	b.intents[providerOrderID] = req.OrderID
	b.mu.Unlock()

	c.JSON(http.StatusCreated, models.PaymentIntentResponse{
		PaymentIntentID: "pi_" + uuid.NewString(),
		ProviderOrderID: providerOrderID,
		Amount:          total,
	})
}

// verifyPayment recomputes the provider signature and compares it against
// the one the widget reported.
func (b *backend) verifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	b.mu.Lock()
	providerOrderID := ""
	for po, orderID := range b.intents {
		if orderID == req.OrderID {
			providerOrderID = po
			break
		}
	}
	b.mu.Unlock()

	if providerOrderID == "" {
		c.JSON(http.StatusOK, models.VerifyPaymentResponse{Verified: false})
		return
	}

	expected := b.sign(providerOrderID, req.ProviderPaymentID)
	verified := hmac.Equal([]byte(expected), []byte(req.ProviderSignature))
	c.JSON(http.StatusOK, models.VerifyPaymentResponse{Verified: verified})
}

// simulateWidget plays the hosted widget's part for local testing: given a
// provider order id it returns a payment id with a valid signature.
func (b *backend) simulateWidget(c *gin.Context) {
	var req struct {
		ProviderOrderID string `json:"provider_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	paymentID := utils.GeneratePaymentID()
	c.JSON(http.StatusOK, models.GatewayResult{
		ProviderPaymentID: paymentID,
		ProviderSignature: b.sign(req.ProviderOrderID, paymentID),
	})
}

func (b *backend) sign(providerOrderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
