package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"booking-dialogue/internal/common/database"
	"booking-dialogue/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type uuidArg struct{}

func (uuidArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func createTestBooking() models.Booking {
	days := 3
	return models.NewBookingFromEntities("car-rental", models.Entities{
		Service:        "suv",
		Date:           "2026-07-01",
		DateEnd:        "2026-07-04",
		Days:           &days,
		PickupLocation: "Budapest",
		ReturnLocation: "Debrecen",
		Email:          "anna@example.com",
	})
}

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(database.NewPostgresFromDB(db))
	repo.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	return repo, mock
}

// ==========================
// Tests
// ==========================

func TestMissing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *models.Booking)
		want   []string
	}{
		{"complete", func(b *models.Booking) {}, nil},
		{"car model replaces category", func(b *models.Booking) { b.Category = ""; b.CarModel = "Skoda Kodiaq" }, nil},
		{"phone replaces email", func(b *models.Booking) { b.Email = ""; b.Phone = "+36301234567" }, nil},
		{"no contact", func(b *models.Booking) { b.Email = "" }, []string{"contact"}},
		{
			"nothing but contact",
			func(b *models.Booking) { *b = models.Booking{Email: "anna@example.com"} },
			[]string{"service", "date", "pickupLocation", "returnLocation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createTestBooking()
			tt.mutate(&b)
			assert.Equal(t, tt.want, Missing(b))
		})
	}
}

func TestReference(t *testing.T) {
	assert.Equal(t, "RB-3F2504E0", Reference("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	assert.Equal(t, "RB-ABC", Reference("abc"))
}

func TestRepository_Save(t *testing.T) {
	repo, mock := newTestRepository(t)
	created := time.Date(2026, 6, 1, 10, 0, 1, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rental_bookings").
		WithArgs(uuidArg{}, nil, "car-rental", "suv", nil, "2026-07-01", "2026-07-04", 3,
			"Budapest", "Debrecen", nil, "anna@example.com", nil, 0, "HUF", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("INSERT INTO rental_booking_events").
		WithArgs(uuidArg{}, "pending", time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), createTestBooking())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = uuid.Parse(saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, models.BookingStatusPending, saved.Status)
}

func TestRepository_SaveKeepsPresetID(t *testing.T) {
	repo, mock := newTestRepository(t)
	id := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rental_bookings").
		WithArgs(id, nil, "car-rental", "suv", nil, "2026-07-01", "2026-07-04", 3,
			"Budapest", "Debrecen", nil, "anna@example.com", nil, 0, "HUF", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("INSERT INTO rental_booking_events").
		WithArgs(id, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	b := createTestBooking()
	b.ID = id
	saved, err := repo.Save(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveRejectsIncomplete(t *testing.T) {
	repo, mock := newTestRepository(t)

	b := createTestBooking()
	b.PickupLocation = ""
	_, err := repo.Save(context.Background(), b)

	assert.ErrorIs(t, err, ErrBookingIncomplete)
	assert.Contains(t, err.Error(), "pickupLocation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveRollsBack(t *testing.T) {
	repo, mock := newTestRepository(t)
	boom := errors.New("unique violation")

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rental_bookings").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), createTestBooking())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveDuplicateID(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO rental_bookings").WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	b := createTestBooking()
	b.ID = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	_, err := repo.Save(context.Background(), b)
	assert.ErrorIs(t, err, ErrBookingExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get(t *testing.T) {
	repo, mock := newTestRepository(t)
	created := time.Date(2026, 6, 1, 10, 0, 1, 0, time.UTC)

	mock.ExpectQuery("FROM rental_bookings").
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "agent_type", "category", "car_model", "start_date", "end_date", "days",
			"pickup_location", "return_location", "customer_name", "email", "phone", "price", "currency", "status", "created_at",
		}).AddRow("b-1", "conv-1", "car-rental", "suv", nil, "2026-07-01", nil, 1,
			"Budapest", "Budapest", nil, nil, "+36301234567", 20000, "HUF", "confirmed", created))

	b, err := repo.Get(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.CategorySUV, b.Category)
	assert.Equal(t, "+36301234567", b.Phone)
	assert.Empty(t, b.Email)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	mock.ExpectQuery("FROM rental_bookings").WithArgs("nope").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rental_bookings").WithArgs("b-1", "confirmed").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rental_booking_events").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.UpdateStatus(context.Background(), "b-1", models.BookingStatusConfirmed))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rental_bookings").WithArgs("b-2", "confirmed").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err := repo.UpdateStatus(context.Background(), "b-2", models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
