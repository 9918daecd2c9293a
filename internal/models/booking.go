package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
)

// Booking is a confirmed rental reservation
type Booking struct {
	ID             string        `json:"id" db:"id"`
	ConversationID string        `json:"conversationId,omitempty" db:"conversation_id"`
	AgentType      string        `json:"agentType" db:"agent_type"`
	Category       Category      `json:"category,omitempty" db:"category"`
	CarModel       string        `json:"carModel,omitempty" db:"car_model"`
	StartDate      string        `json:"startDate" db:"start_date"`
	EndDate        string        `json:"endDate,omitempty" db:"end_date"`
	Days           int           `json:"days" db:"days"`
	PickupLocation string        `json:"pickupLocation" db:"pickup_location"`
	ReturnLocation string        `json:"returnLocation" db:"return_location"`
	CustomerName   string        `json:"customerName,omitempty" db:"customer_name"`
	Email          string        `json:"email,omitempty" db:"email"`
	Phone          string        `json:"phone,omitempty" db:"phone"`
	Price          int           `json:"price" db:"price"`
	Currency       string        `json:"currency" db:"currency"`
	Status         BookingStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
}

// NewBookingFromEntities builds a pending booking from collected slots.
func NewBookingFromEntities(agentType string, e Entities) Booking {
	b := Booking{
		AgentType:      agentType,
		Category:       Category(e.Service),
		CarModel:       e.CarModel,
		StartDate:      e.Date,
		EndDate:        e.DateEnd,
		Days:           1,
		PickupLocation: e.PickupLocation,
		ReturnLocation: e.ReturnLocation,
		CustomerName:   e.Name,
		Email:          e.Email,
		Phone:          e.Phone,
		Currency:       "HUF",
		Status:         BookingStatusPending,
	}
	if e.Days != nil && *e.Days > 0 {
		b.Days = *e.Days
	}
	return b
}
