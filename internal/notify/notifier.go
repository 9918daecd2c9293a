// Package notify sends booking confirmations by email (SES) and SMS (SNS).
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"booking-dialogue/internal/booking"
	commonaws "booking-dialogue/internal/common/aws"
	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/dialogue/reply"
	"booking-dialogue/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// Channel statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Result reports what happened on each channel.
type Result struct {
	Email          string `json:"email"`
	SMS            string `json:"sms"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	SMSMessageID   string `json:"smsMessageId,omitempty"`
}

type Notifier struct {
	cfg    config.NotificationConfig
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, ses: sesClient, sns: snsClient, logger: log}
}

// SendBookingConfirmation notifies the customer on every enabled channel
// they have an address for. It fails only when every attempted channel
// failed, so a retry never repeats a delivered message.
func (n *Notifier) SendBookingConfirmation(ctx context.Context, b models.Booking) (Result, error) {
	res := Result{Email: StatusDisabled, SMS: StatusDisabled}
	attempted, failed := 0, 0
	var errs []error

	if n.cfg.Email.Enabled && n.ses != nil {
		res.Email = StatusSkipped
		if b.Email != "" {
			attempted++
			input := commonaws.TextEmail(n.cfg.Email.FromEmail, b.Email, EmailSubject(b), EmailBody(b))
			out, err := n.ses.SendEmail(ctx, input)
			if err != nil {
				failed++
				res.Email = StatusFailed
				errs = append(errs, fmt.Errorf("email: %w", err))
				n.logger.Error("confirmation email failed", map[string]interface{}{
					"bookingId": b.ID,
					"error":     err.Error(),
				})
			} else {
				res.Email = StatusSent
				res.EmailMessageID = aws.ToString(out.MessageId)
			}
		}
	}

	if n.cfg.SMS.Enabled && n.sns != nil {
		res.SMS = StatusSkipped
		if b.Phone != "" {
			attempted++
			out, err := n.sns.Publish(ctx, commonaws.TransactionalSMS(b.Phone, n.cfg.SMS.SenderID, SMSText(b)))
			if err != nil {
				failed++
				res.SMS = StatusFailed
				errs = append(errs, fmt.Errorf("sms: %w", err))
				n.logger.Error("confirmation sms failed", map[string]interface{}{
					"bookingId": b.ID,
					"error":     err.Error(),
				})
			} else {
				res.SMS = StatusSent
				res.SMSMessageID = aws.ToString(out.MessageId)
			}
		}
	}

	n.logger.Info("booking confirmation processed", map[string]interface{}{
		"bookingId": b.ID,
		"email":     res.Email,
		"sms":       res.SMS,
	})

	if attempted > 0 && failed == attempted {
		return res, fmt.Errorf("%w: %w", ErrNotificationSendFailed, errors.Join(errs...))
	}
	return res, nil
}

func EmailSubject(b models.Booking) string {
	return "Foglalás visszaigazolása: " + booking.Reference(b.ID)
}

// EmailBody is the plain text confirmation.
func EmailBody(b models.Booking) string {
	var sb strings.Builder
	name := b.CustomerName
	if name == "" {
		name = "Ügyfelünk"
	}
	fmt.Fprintf(&sb, "Kedves %s!\n\n", name)
	sb.WriteString("Köszönjük a foglalását. A részletek:\n\n")
	fmt.Fprintf(&sb, "Foglalási azonosító: %s\n", booking.Reference(b.ID))
	if b.CarModel != "" {
		fmt.Fprintf(&sb, "Autó: %s\n", b.CarModel)
	} else if b.Category.Valid() {
		fmt.Fprintf(&sb, "Kategória: %s\n", b.Category.Label())
	}
	if b.EndDate != "" {
		fmt.Fprintf(&sb, "Időszak: %s – %s (%d nap)\n", b.StartDate, b.EndDate, b.Days)
	} else {
		fmt.Fprintf(&sb, "Dátum: %s\n", b.StartDate)
	}
	fmt.Fprintf(&sb, "Átvétel: %s\n", b.PickupLocation)
	fmt.Fprintf(&sb, "Leadás: %s\n", b.ReturnLocation)
	if b.Price > 0 {
		fmt.Fprintf(&sb, "Becsült ár: %s\n", reply.FormatHUF(b.Price))
	}
	sb.WriteString("\nHa kérdése van, válaszoljon erre a levélre.\n")
	return sb.String()
}

func SMSText(b models.Booking) string {
	return fmt.Sprintf("Foglalás rögzítve (%s): %s, átvétel %s.", booking.Reference(b.ID), b.StartDate, b.PickupLocation)
}
