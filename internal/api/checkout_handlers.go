package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/utils"
)

type checkoutView struct {
	Status  models.CheckoutStatus   `json:"status"`
	Session *models.CheckoutSession `json:"session,omitempty"`
	Message string                  `json:"message,omitempty"`
}

func (h *Handler) checkoutState(session *UserSession) checkoutView {
	return checkoutView{
		Status:  session.Checkout.Status(),
		Session: session.Checkout.Session(),
		Message: session.Checkout.LastMessage(),
	}
}

// StartCheckout begins a checkout attempt for the caller's cart. Transient
// failures leave the cart untouched and are safe to retry.
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	checkoutSession, err := session.Checkout.Start(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCheckoutInProgress):
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Checkout already in progress", err.Error()))
		case errors.Is(err, checkout.ErrEmptyCart):
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Cart is empty", err.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("StartCheckout failed for user %s: %v", userID, err))
			utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse("Checkout failed, please retry", err.Error()))
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Checkout started", checkoutSession))
}

func (h *Handler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Checkout status", h.checkoutState(session)))
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Checkout.Cancel(r.Context()); err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoActiveCheckout):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("No active checkout", err.Error()))
		default:
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Checkout cannot be cancelled right now", err.Error()))
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Checkout cancelled", h.checkoutState(session)))
}

// GatewaySuccess is the widget's completion callback. The response carries
// the resulting state: completed on a verified payment, failed with a
// support message on a mismatch.
func (h *Handler) GatewaySuccess(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	var result models.GatewayResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if result.ProviderPaymentID == "" || result.ProviderSignature == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid callback", "provider_payment_id and provider_signature are required"))
		return
	}

	err := session.Checkout.HandleGatewaySuccess(r.Context(), result)
	if err != nil {
		if errors.Is(err, checkout.ErrNotAwaitingGateway) {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("No checkout awaiting the gateway", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GatewaySuccess verification error for user %s: %v", userID, err))
		utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse("Payment verification could not be completed", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Gateway result processed", h.checkoutState(session)))
}

// GatewayDismiss is the widget's dismissal callback. Dismissal after a
// success has begun verifying is a no-op.
func (h *Handler) GatewayDismiss(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Checkout.HandleGatewayDismiss(r.Context()); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to process dismissal", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Checkout dismissed", h.checkoutState(session)))
}
