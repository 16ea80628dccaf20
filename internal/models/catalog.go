package models

import "time"

// TicketType mirrors the catalog service's ticket type. The catalog owns
// this data; the storefront only reads it to populate line items and to
// compute demand.
type TicketType struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	BasePrice         float64 `json:"base_price"`
	TotalQuantity     int     `json:"total_quantity"`
	RemainingQuantity int     `json:"remaining_quantity"`
	PricingStrategy   string  `json:"pricing_strategy"`
}

// SoldPercentage returns how sold-out this ticket type is, in percent.
// A ticket type with zero total quantity reports 0%.
func (t TicketType) SoldPercentage() float64 {
	if t.TotalQuantity <= 0 {
		return 0
	}
	return float64(t.TotalQuantity-t.RemainingQuantity) / float64(t.TotalQuantity) * 100
}

type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Venue       string       `json:"venue,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	StartTime   time.Time    `json:"start_time,omitempty"`
	TicketTypes []TicketType `json:"ticket_types"`
}
