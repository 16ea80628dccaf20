package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/models"
	"storefront/internal/utils"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Cart", session.Cart.Snapshot()))
}

// AddItem validates the payload before it reaches the store; the store
// itself does not reject malformed input.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	var item models.LineItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if item.TicketTypeID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid line item", "ticket_type_id is required"))
		return
	}
	if item.Quantity < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid line item", "quantity must be a positive integer"))
		return
	}
	if item.UnitPrice < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid line item", "unit_price must not be negative"))
		return
	}

	if err := session.Cart.AddItem(r.Context(), item); err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddItem failed for user %s: %v", userID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to add item", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Item added", session.Cart.Snapshot()))
}

// UpdateQuantity sets the quantity directly. A quantity below 1 is
// rejected; removal is a separate, explicit call.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}
	ticketTypeID := chi.URLParam(r, "ticketTypeId")

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if payload.Quantity < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid quantity", "quantity must be at least 1; delete the item to remove it"))
		return
	}

	if err := session.Cart.UpdateQuantity(r.Context(), ticketTypeID, payload.Quantity); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateQuantity failed for user %s: %v", userID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update quantity", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Quantity updated", session.Cart.Snapshot()))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}
	ticketTypeID := chi.URLParam(r, "ticketTypeId")

	if err := session.Cart.RemoveItem(r.Context(), ticketTypeID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RemoveItem failed for user %s: %v", userID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to remove item", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Item removed", session.Cart.Snapshot()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Cart.Clear(r.Context()); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ClearCart failed for user %s: %v", userID, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to clear cart", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Cart cleared", session.Cart.Snapshot()))
}

// StreamCart pushes cart snapshots to the client as server-sent events,
// starting with the current state.
func (h *Handler) StreamCart(w http.ResponseWriter, r *http.Request) {
	session, userID, ok := h.session(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := h.Emitter.Subscribe(r.Context(), userID)

	writeSnapshot := func(snapshot models.Cart) {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	writeSnapshot(session.Cart.Snapshot())

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-updates:
			if !open {
				return
			}
			writeSnapshot(snapshot)
		}
	}
}
