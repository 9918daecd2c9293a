// Package booking persists confirmed rental bookings.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/dialogue/slots"
	"booking-dialogue/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrBookingIncomplete = errors.New("BOOKING_INCOMPLETE")
	ErrBookingNotFound   = errors.New("BOOKING_NOT_FOUND")
	ErrBookingExists     = errors.New("BOOKING_EXISTS")
)

const uniqueViolation = "23505"

const (
	insertBookingQuery = `
		INSERT INTO rental_bookings (
			id, conversation_id, agent_type, category, car_model, start_date, end_date, days,
			pickup_location, return_location, customer_name, email, phone, price, currency, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at`

	insertEventQuery = `
		INSERT INTO rental_booking_events (booking_id, status, created_at)
		VALUES ($1, $2, $3)`

	selectBookingQuery = `
		SELECT id, conversation_id, agent_type, category, car_model, start_date, end_date, days,
		       pickup_location, return_location, customer_name, email, phone, price, currency, status, created_at
		FROM rental_bookings
		WHERE id = $1`

	updateStatusQuery = `UPDATE rental_bookings SET status = $2 WHERE id = $1`
)

// Missing lists the booking fields still required before b can be saved.
func Missing(b models.Booking) []string {
	return slots.Missing(models.Entities{
		Service:        string(b.Category),
		CarModel:       b.CarModel,
		Date:           b.StartDate,
		PickupLocation: b.PickupLocation,
		ReturnLocation: b.ReturnLocation,
		Email:          b.Email,
		Phone:          b.Phone,
	})
}

// Reference is the short code shown to the customer.
func Reference(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "RB-" + strings.ToUpper(compact)
}

// Repository stores bookings in the rental_bookings table.
type Repository struct {
	db  *database.PostgresClient
	now func() time.Time
}

func NewRepository(db *database.PostgresClient) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Save inserts b, assigning an ID when it has none, and records the creation event. Incomplete
// bookings are rejected with ErrBookingIncomplete.
func (r *Repository) Save(ctx context.Context, b models.Booking) (models.Booking, error) {
	if missing := Missing(b); len(missing) > 0 {
		return models.Booking{}, fmt.Errorf("%w: missing %s", ErrBookingIncomplete, strings.Join(missing, ", "))
	}

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = models.BookingStatusPending
	}
	if b.Currency == "" {
		b.Currency = "HUF"
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertBookingQuery,
			b.ID, nullString(b.ConversationID), b.AgentType, nullString(string(b.Category)), nullString(b.CarModel),
			b.StartDate, nullString(b.EndDate), b.Days,
			b.PickupLocation, b.ReturnLocation, nullString(b.CustomerName), nullString(b.Email), nullString(b.Phone),
			b.Price, b.Currency, string(b.Status),
		).Scan(&b.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		if _, err := tx.ExecContext(ctx, insertEventQuery, b.ID, string(b.Status), r.now().UTC()); err != nil {
			return fmt.Errorf("insert booking event: %w", err)
		}
		return nil
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Booking{}, fmt.Errorf("%w: %s", ErrBookingExists, b.ID)
		}
		return models.Booking{}, err
	}
	return b, nil
}

// Get loads a booking by ID.
func (r *Repository) Get(ctx context.Context, id string) (models.Booking, error) {
	var (
		b                                   models.Booking
		conversationID, category, carModel  sql.NullString
		endDate, customerName, email, phone sql.NullString
		status                              string
	)

	err := r.db.DB.QueryRowContext(ctx, selectBookingQuery, id).Scan(
		&b.ID, &conversationID, &b.AgentType, &category, &carModel, &b.StartDate, &endDate, &b.Days,
		&b.PickupLocation, &b.ReturnLocation, &customerName, &email, &phone,
		&b.Price, &b.Currency, &status, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("query booking: %w", err)
	}

	b.ConversationID = conversationID.String
	b.Category = models.Category(category.String)
	b.CarModel = carModel.String
	b.EndDate = endDate.String
	b.CustomerName = customerName.String
	b.Email = email.String
	b.Phone = phone.String
	b.Status = models.BookingStatus(status)
	return b, nil
}

// UpdateStatus changes the status of a booking and records the event.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateStatusQuery, id, string(status))
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
		}
		if _, err := tx.ExecContext(ctx, insertEventQuery, id, string(status), r.now().UTC()); err != nil {
			return fmt.Errorf("insert booking event: %w", err)
		}
		return nil
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
