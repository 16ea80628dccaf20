package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func newTestBackend() (*backend, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	b := &backend{
		secret:  []byte("test-secret"),
		orders:  make(map[string]float64),
		intents: make(map[string]string),
	}

	r := gin.New()
	api := r.Group("/api")
	api.GET("/events/:eventId", b.getEvent)
	api.POST("/orders/:userId/checkOut", b.createOrder)
	api.POST("/payments/create/razorpay", b.createIntent)
	api.POST("/payments/razorpay/verify", b.verifyPayment)
	api.POST("/payments/razorpay/simulate", b.simulateWidget)
	return b, r
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateOrderAddsServiceFee(t *testing.T) {
	_, router := newTestBackend()

	recorder := postJSON(t, router, "/api/orders/user123/checkOut", models.CreateOrderRequest{
		Items: []models.LineItem{
			{TicketTypeID: "tt-1", UnitPrice: 500, Quantity: 2},
		},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created models.CreateOrderResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.NotEmpty(t, created.OrderID)
	assert.Equal(t, 1050.0, created.TotalAmount)
}

func TestIntentUsesStoredOrderTotal(t *testing.T) {
	b, router := newTestBackend()
	b.orders["ord-1"] = 1050

	// The client-supplied amount is ignored in favor of the order record.
	recorder := postJSON(t, router, "/api/payments/create/razorpay", models.PaymentIntentRequest{
		OrderID: "ord-1",
		Amount:  1,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var intent models.PaymentIntentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &intent))
	assert.Equal(t, 1050.0, intent.Amount)
	assert.NotEmpty(t, intent.ProviderOrderID)
}

func TestIntentForUnknownOrder(t *testing.T) {
	_, router := newTestBackend()

	recorder := postJSON(t, router, "/api/payments/create/razorpay", models.PaymentIntentRequest{
		OrderID: "missing",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestWidgetSignatureVerifies(t *testing.T) {
	b, router := newTestBackend()
	b.orders["ord-1"] = 1050
	b.intents["order_prov_1"] = "ord-1"

	// The simulated widget produces a signature...
	recorder := postJSON(t, router, "/api/payments/razorpay/simulate", map[string]string{
		"provider_order_id": "order_prov_1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result models.GatewayResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))

	// ...that verification accepts
	recorder = postJSON(t, router, "/api/payments/razorpay/verify", models.VerifyPaymentRequest{
		OrderID:           "ord-1",
		ProviderPaymentID: result.ProviderPaymentID,
		ProviderSignature: result.ProviderSignature,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var verification models.VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &verification))
	assert.True(t, verification.Verified)
}

func TestTamperedSignatureIsRejected(t *testing.T) {
	b, router := newTestBackend()
	b.orders["ord-1"] = 1050
	b.intents["order_prov_1"] = "ord-1"

	recorder := postJSON(t, router, "/api/payments/razorpay/verify", models.VerifyPaymentRequest{
		OrderID:           "ord-1",
		ProviderPaymentID: "pay_abc",
		ProviderSignature: "deadbeef",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var verification models.VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &verification))
	assert.False(t, verification.Verified)
}

func TestVerifyUnknownOrderIsNotVerified(t *testing.T) {
	_, router := newTestBackend()

	recorder := postJSON(t, router, "/api/payments/razorpay/verify", models.VerifyPaymentRequest{
		OrderID:           "missing",
		ProviderPaymentID: "pay_abc",
		ProviderSignature: "deadbeef",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var verification models.VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &verification))
	assert.False(t, verification.Verified)
}
