// internal/workers/booking/save-rental-booking/models.go
package saverentalbooking

import "booking-dialogue/internal/models"

type Input struct {
	BookingID      string          `json:"bookingId"`
	ConversationID string          `json:"conversationId"`
	AgentType      string          `json:"agentType"`
	Entities       models.Entities `json:"entities"`
	Price          int             `json:"price"`
	Currency       string          `json:"currency"`
}

type Output struct {
	BookingID string               `json:"bookingId"`
	Reference string               `json:"bookingReference"`
	Status    models.BookingStatus `json:"bookingStatus"`
	CreatedAt string               `json:"createdAt"` // ISO 8601
}
