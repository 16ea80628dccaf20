package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/logger"
	"storefront/internal/sse"
	"storefront/internal/utils"
)

type Handler struct {
	Registry *Registry
	Catalog  *catalog.Client
	Emitter  *sse.CartEventEmitter
	Logger   *logger.Logger
}

func NewHandler(registry *Registry, catalogClient *catalog.Client, emitter *sse.CartEventEmitter, log *logger.Logger) *Handler {
	return &Handler{
		Registry: registry,
		Catalog:  catalogClient,
		Emitter:  emitter,
		Logger:   log,
	}
}

// Routes wires the storefront API. Everything except the demand endpoint is
// scoped to the authenticated user.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/events/{eventId}/demand", h.GetEventDemand)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddItem)
		r.Put("/cart/items/{ticketTypeId}", h.UpdateQuantity)
		r.Delete("/cart/items/{ticketTypeId}", h.RemoveItem)
		r.Delete("/cart", h.ClearCart)
		r.Get("/cart/stream", h.StreamCart)

		r.Post("/checkout", h.StartCheckout)
		r.Get("/checkout/status", h.CheckoutStatus)
		r.Delete("/checkout", h.CancelCheckout)
		r.Post("/checkout/gateway/success", h.GatewaySuccess)
		r.Post("/checkout/gateway/dismiss", h.GatewayDismiss)
	})

	return r
}

// session resolves the caller's UserSession, writing the error response
// itself when it cannot.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*UserSession, string, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no authenticated user"))
		return nil, "", false
	}

	session, err := h.Registry.ForUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("API", "Failed to load session for user "+userID+": "+err.Error())
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load cart", err.Error()))
		return nil, "", false
	}
	return session, userID, true
}
