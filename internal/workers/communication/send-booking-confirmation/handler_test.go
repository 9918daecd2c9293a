package sendbookingconfirmation

import (
	"context"
	"testing"
	"time"

	"booking-dialogue/internal/booking"
	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/database"
	apperrors "booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/models"
	"booking-dialogue/internal/notify"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock AWS Services
// ==========================

type MockSESService struct {
	err   error
	calls int
}

func (m *MockSESService) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
}

type MockSNSService struct {
	err   error
	calls int
}

func (m *MockSNSService) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

const testBookingID = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"

var bookingColumns = []string{
	"id", "conversation_id", "agent_type", "category", "car_model", "start_date", "end_date", "days",
	"pickup_location", "return_location", "customer_name", "email", "phone", "price", "currency", "status", "created_at",
}

type fixture struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	ses     *MockSESService
	sns     *MockSNSService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "foglalas@rent.hu"
	cfg.SMS.Enabled = true
	cfg.SMS.SenderID = "RentHU"

	log := logger.NewTestLogger(t)
	f := &fixture{mock: mock, ses: &MockSESService{}, sns: &MockSNSService{}}
	f.handler = NewHandler(LoadConfig(nil), ServiceDependencies{
		Repository: booking.NewRepository(database.NewPostgresFromDB(db)),
		Notifier:   notify.NewNotifier(cfg, f.ses, f.sns, log),
		Logger:     log,
	})
	return f
}

func (f *fixture) expectBooking(status models.BookingStatus) {
	created := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	f.mock.ExpectQuery("SELECT (.+) FROM rental_bookings").
		WithArgs(testBookingID).
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(testBookingID, "conv-1", "car-rental", "suv", nil, "2026-09-10", "2026-09-13", 3,
				"Budapest", "Debrecen", "Kiss Anna", "anna@example.com", "+36301234567", 60000, "HUF",
				string(status), created))
}

func (f *fixture) expectConfirm() {
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE rental_bookings SET status").
		WithArgs(testBookingID, "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("INSERT INTO rental_booking_events").
		WithArgs(testBookingID, "confirmed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	f.mock.ExpectCommit()
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	f := newFixture(t)
	f.expectBooking(models.BookingStatusPending)
	f.expectConfirm()

	out, err := f.handler.Execute(context.Background(), &Input{BookingID: testBookingID})
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, notify.StatusSent, out.Email)
	assert.Equal(t, notify.StatusSent, out.SMS)
	assert.Equal(t, "ses-msg-1", out.EmailMessageID)
	assert.Equal(t, "sns-msg-1", out.SMSMessageID)
	assert.Equal(t, models.BookingStatusConfirmed, out.Status)
}

func TestHandler_Execute_PartialFailureStillConfirms(t *testing.T) {
	f := newFixture(t)
	f.sns.err = assert.AnError
	f.expectBooking(models.BookingStatusPending)
	f.expectConfirm()

	out, err := f.handler.Execute(context.Background(), &Input{BookingID: testBookingID})
	require.NoError(t, err)
	assert.Equal(t, notify.StatusSent, out.Email)
	assert.Equal(t, notify.StatusFailed, out.SMS)
	assert.Equal(t, models.BookingStatusConfirmed, out.Status)
}

func TestHandler_Execute_AlreadyConfirmed(t *testing.T) {
	f := newFixture(t)
	f.expectBooking(models.BookingStatusConfirmed)

	out, err := f.handler.Execute(context.Background(), &Input{BookingID: testBookingID})
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, notify.StatusSkipped, out.Email)
	assert.Zero(t, f.ses.calls)
	assert.Zero(t, f.sns.calls)
}

func TestHandler_Execute_StatusUpdateFailureCompletes(t *testing.T) {
	f := newFixture(t)
	f.expectBooking(models.BookingStatusPending)
	f.mock.ExpectBegin().WillReturnError(assert.AnError)

	out, err := f.handler.Execute(context.Background(), &Input{BookingID: testBookingID})
	require.NoError(t, err)
	assert.Equal(t, notify.StatusSent, out.Email)
	assert.Equal(t, models.BookingStatusPending, out.Status)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		setup         func(f *fixture)
		wantCode      apperrors.ErrorCode
		wantRetryable bool
	}{
		{
			name:     "missing booking id",
			input:    &Input{},
			setup:    func(f *fixture) {},
			wantCode: apperrors.ErrCodeInvalidTurnInput,
		},
		{
			name:  "unknown booking",
			input: &Input{BookingID: testBookingID},
			setup: func(f *fixture) {
				f.mock.ExpectQuery("SELECT (.+) FROM rental_bookings").
					WithArgs(testBookingID).
					WillReturnRows(sqlmock.NewRows(bookingColumns))
			},
			wantCode: apperrors.ErrCodeBookingNotFound,
		},
		{
			name:  "database unavailable",
			input: &Input{BookingID: testBookingID},
			setup: func(f *fixture) {
				f.mock.ExpectQuery("SELECT (.+) FROM rental_bookings").WillReturnError(assert.AnError)
			},
			wantCode:      apperrors.ErrCodeBookingSaveFailed,
			wantRetryable: true,
		},
		{
			name:  "every channel failed",
			input: &Input{BookingID: testBookingID},
			setup: func(f *fixture) {
				f.ses.err = assert.AnError
				f.sns.err = assert.AnError
				f.expectBooking(models.BookingStatusPending)
			},
			wantCode:      apperrors.ErrCodeNotificationSendFailed,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			_, err := f.handler.Execute(context.Background(), tt.input)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(&config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 2000},
	}})
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{}).Validate())
}
