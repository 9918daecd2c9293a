package sendbookingconfirmation

import (
	"context"
	stderrors "errors"

	"booking-dialogue/internal/booking"
	"booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/models"
	"booking-dialogue/internal/notify"
)

type Service struct {
	config   *Config
	repo     Repository
	notifier Notifier
	logger   logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		repo:     deps.Repository,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// Execute sends the confirmation for a stored booking and marks it confirmed.
// A booking that is already confirmed is not notified again.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.BookingID == "" {
		return nil, errors.NewInvalidTurnInputError("bookingId is required")
	}

	b, err := s.repo.Get(ctx, input.BookingID)
	if stderrors.Is(err, booking.ErrBookingNotFound) {
		return nil, errors.NewBookingNotFoundError(input.BookingID)
	}
	if err != nil {
		return nil, errors.NewBookingSaveFailedError(err)
	}

	if b.Status == models.BookingStatusConfirmed {
		s.logger.Info("booking already confirmed", map[string]interface{}{"bookingId": b.ID})
		return &Output{Email: notify.StatusSkipped, SMS: notify.StatusSkipped, Status: b.Status}, nil
	}

	res, err := s.notifier.SendBookingConfirmation(ctx, b)
	if err != nil {
		if stderrors.Is(err, notify.ErrNotificationSendFailed) {
			return nil, errors.NewNotificationSendFailedError(channels(res), err)
		}
		return nil, errors.NewInternalError(err)
	}

	out := &Output{
		Email:          res.Email,
		SMS:            res.SMS,
		EmailMessageID: res.EmailMessageID,
		SMSMessageID:   res.SMSMessageID,
		Status:         b.Status,
	}

	// the customer has been notified, so a failed update must not fail the job
	if err := s.repo.UpdateStatus(ctx, b.ID, models.BookingStatusConfirmed); err != nil {
		s.logger.Warn("booking status not updated", map[string]interface{}{
			"bookingId": b.ID,
			"error":     err.Error(),
		})
		return out, nil
	}
	out.Status = models.BookingStatusConfirmed
	return out, nil
}

func channels(res notify.Result) string {
	switch {
	case res.Email == notify.StatusFailed && res.SMS == notify.StatusFailed:
		return "email,sms"
	case res.SMS == notify.StatusFailed:
		return "sms"
	default:
		return "email"
	}
}
