package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/models"
)

func seedBooking(t *testing.T, s *Store, customerID string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		CustomerID:  customerID,
		ServiceType: "deep-cleaning",
		Date:        time.Now().AddDate(0, 0, 7),
		Duration:    3,
		Price:       180,
		Address:     "1 Main St, Bondi 2026",
	}
	require.NoError(t, s.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateBookingStartsPending(t *testing.T) {
	s, _ := newTestStore(t, nil)
	customer := seedUser(t, s, "auth0|123", "jane@example.com", models.RoleCustomer)

	booking := &models.Booking{
		CustomerID:  customer.ID,
		ServiceType: "deep-cleaning",
		Date:        time.Now().AddDate(0, 0, 7),
		Duration:    3,
		Price:       180,
		Address:     "1 Main St, Bondi 2026",
		Status:      models.StatusConfirmed, // callers cannot pick a status
	}
	require.NoError(t, s.CreateBooking(context.Background(), booking))

	assert.Equal(t, models.StatusPending, booking.Status)
	assert.NotEmpty(t, booking.ID)
}

func TestGetBookingsByCustomerIDEmpty(t *testing.T) {
	s, _ := newTestStore(t, nil)

	bookings, err := s.GetBookingsByCustomerID(context.Background(), "9f4f3e6a-0000-0000-0000-000000000000")

	require.NoError(t, err, "zero rows must not be an error")
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}

func TestGetBookingsByCustomerID(t *testing.T) {
	s, _ := newTestStore(t, nil)
	customer := seedUser(t, s, "auth0|123", "jane@example.com", models.RoleCustomer)
	other := seedUser(t, s, "auth0|456", "tom@example.com", models.RoleCustomer)
	seedBooking(t, s, customer.ID)
	seedBooking(t, s, customer.ID)
	seedBooking(t, s, other.ID)

	bookings, err := s.GetBookingsByCustomerID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, customer.ID, b.CustomerID)
	}
}

func TestGetBookingByIDNotFound(t *testing.T) {
	s, _ := newTestStore(t, nil)

	_, err := s.GetBookingByID(context.Background(), "9f4f3e6a-0000-0000-0000-000000000000")

	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestUpdateBookingMergesOnlyProvidedFields(t *testing.T) {
	s, _ := newTestStore(t, nil)
	customer := seedUser(t, s, "auth0|123", "jane@example.com", models.RoleCustomer)
	created := seedBooking(t, s, customer.ID)

	updated, err := s.UpdateBooking(context.Background(), created.ID, map[string]any{
		"notes": "Key under the mat",
	})
	require.NoError(t, err)

	assert.Equal(t, "Key under the mat", updated.Notes)
	assert.Equal(t, created.Duration, updated.Duration)
	assert.Equal(t, created.Price, updated.Price)
	assert.Equal(t, created.Address, updated.Address)
}

func TestUpdateBookingCannotChangeStatus(t *testing.T) {
	s, _ := newTestStore(t, nil)
	customer := seedUser(t, s, "auth0|123", "jane@example.com", models.RoleCustomer)
	created := seedBooking(t, s, customer.ID)

	updated, err := s.UpdateBooking(context.Background(), created.ID, map[string]any{
		"status": models.StatusCompleted,
		"notes":  "trying to sneak a status change",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, updated.Status, "status is not a partial-update column")
	assert.Equal(t, "trying to sneak a status change", updated.Notes)
}

func TestUpdateBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to confirmed", models.StatusPending, models.StatusConfirmed, true},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, true},
		{"confirmed to completed", models.StatusConfirmed, models.StatusCompleted, true},
		{"confirmed to cancelled", models.StatusConfirmed, models.StatusCancelled, true},
		{"pending to completed", models.StatusPending, models.StatusCompleted, false},
		{"completed to pending", models.StatusCompleted, models.StatusPending, false},
		{"cancelled to confirmed", models.StatusCancelled, models.StatusConfirmed, false},
		{"completed to cancelled", models.StatusCompleted, models.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t, nil)
			customer := seedUser(t, s, "auth0|123", "jane@example.com", models.RoleCustomer)
			created := seedBooking(t, s, customer.ID)

			// Walk the booking into the starting status through valid hops.
			switch tt.from {
			case models.StatusConfirmed:
				_, err := s.UpdateBookingStatus(context.Background(), created.ID, models.StatusConfirmed)
				require.NoError(t, err)
			case models.StatusCompleted:
				_, err := s.UpdateBookingStatus(context.Background(), created.ID, models.StatusConfirmed)
				require.NoError(t, err)
				_, err = s.UpdateBookingStatus(context.Background(), created.ID, models.StatusCompleted)
				require.NoError(t, err)
			case models.StatusCancelled:
				_, err := s.UpdateBookingStatus(context.Background(), created.ID, models.StatusCancelled)
				require.NoError(t, err)
			}

			booking, err := s.UpdateBookingStatus(context.Background(), created.ID, tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, booking.Status)
				return
			}

			var appErr *apperrors.AppError
			assert.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Equal(t, 400, appErr.Status)
		})
	}
}

func TestGetBookingsForCleaner(t *testing.T) {
	s, _ := newTestStore(t, nil)
	customer := seedUser(t, s, "auth0|123", "jane@example.com", models.RoleCustomer)
	cleaner := seedUser(t, s, "auth0|456", "tom@example.com", models.RoleCleaner)
	created := seedBooking(t, s, customer.ID)

	_, err := s.UpdateBooking(context.Background(), created.ID, map[string]any{"cleaner_id": cleaner.ID})
	require.NoError(t, err)

	bookings, err := s.GetBookingsForCleaner(context.Background(), cleaner.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, created.ID, bookings[0].ID)

	none, err := s.GetBookingsForCleaner(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
