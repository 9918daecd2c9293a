// internal/workers/booking/quote-rental-price/models.go
package quoterentalprice

import "booking-dialogue/internal/models"

// Input is either an explicit booking request or the dialogue entities.
// Explicit fields win.
type Input struct {
	AgentType      string           `json:"agentType"`
	CarType        string           `json:"carType,omitempty"`
	Days           int              `json:"days,omitempty"`
	PickupLocation string           `json:"pickupLocation,omitempty"`
	ReturnLocation string           `json:"returnLocation,omitempty"`
	Entities       *models.Entities `json:"entities,omitempty"`
}

type Output struct {
	Price    int             `json:"price"`
	Currency string          `json:"currency"`
	Category models.Category `json:"category,omitempty"`
	Days     int             `json:"days"`
	Priced   bool            `json:"priced"`
}
