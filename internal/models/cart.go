package models

import "time"

// LineItem is one ticket-type selection in the cart. TicketTypeID is the
// unique key within a cart; everything except UnitPrice and Quantity is
// display metadata carried along for the UI.
type LineItem struct {
	TicketTypeID string    `json:"ticket_type_id"`
	EventID      string    `json:"event_id"`
	EventName    string    `json:"event_name"`
	TicketName   string    `json:"ticket_name"`
	UnitPrice    float64   `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	EventImage   string    `json:"event_image,omitempty"`
	Venue        string    `json:"venue,omitempty"`
	StartTime    time.Time `json:"start_time,omitempty"`
}

// Cart is a point-in-time view of the cart. Totals are always derived from
// Items, never stored on their own.
type Cart struct {
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}
