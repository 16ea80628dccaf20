package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/utils"
)

type ticketTypeDemand struct {
	TicketType     models.TicketType       `json:"ticket_type"`
	SoldPercentage float64                 `json:"sold_percentage"`
	Demand         pricing.DemandLevel     `json:"demand"`
	Strategy       pricing.StrategyDetails `json:"strategy"`
}

// GetEventDemand joins the catalog's ticket types with the demand
// classifier so the UI can render availability badges in one call.
func (h *Handler) GetEventDemand(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.Catalog.GetEventByID(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventDemand: catalog error for event %s: %v", eventID, err))
		utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse("Catalog unavailable", err.Error()))
		return
	}
	if event == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", eventID))
		return
	}

	demand := make([]ticketTypeDemand, len(event.TicketTypes))
	for i, ticketType := range event.TicketTypes {
		soldPercentage := ticketType.SoldPercentage()
		demand[i] = ticketTypeDemand{
			TicketType:     ticketType,
			SoldPercentage: soldPercentage,
			Demand:         pricing.Classify(soldPercentage),
			Strategy:       pricing.StrategyInfo(ticketType.PricingStrategy),
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event demand", map[string]interface{}{
		"event_id":     event.ID,
		"event_name":   event.Name,
		"ticket_types": demand,
	}))
}
