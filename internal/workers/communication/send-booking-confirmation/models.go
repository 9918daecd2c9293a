package sendbookingconfirmation

import (
	"context"

	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/models"
	"booking-dialogue/internal/notify"
)

type Input struct {
	BookingID string `json:"bookingId"`
}

type Output struct {
	Email          string               `json:"email"`
	SMS            string               `json:"sms"`
	EmailMessageID string               `json:"emailMessageId,omitempty"`
	SMSMessageID   string               `json:"smsMessageId,omitempty"`
	Status         models.BookingStatus `json:"bookingStatus"`
}

type Repository interface {
	Get(ctx context.Context, id string) (models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, b models.Booking) (notify.Result, error)
}

type ServiceDependencies struct {
	Repository Repository
	Notifier   Notifier
	Logger     logger.Logger
}
