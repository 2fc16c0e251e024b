package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/models"
)

// bookingColumns are the columns a partial booking update may touch. Status
// is deliberately absent: status changes go through UpdateBookingStatus.
var bookingColumns = []string{
	"cleaner_id", "service_type", "date", "duration", "price", "address", "notes", "photo_key", "metadata",
}

// GetBookingByID fetches a booking. Missing rows map to NOT_FOUND.
func (s *Store) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.execute(ctx, "get-booking-by-id", readRetries, func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Booking not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingsByCustomerID lists a customer's bookings, newest first. Zero
// rows yield an empty slice, not an error.
func (s *Store) GetBookingsByCustomerID(ctx context.Context, customerID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.execute(ctx, "get-bookings-by-customer", readRetries, func(tx *gorm.DB) error {
		return tx.Where("customer_id = ?", customerID).Order("date DESC").Find(&bookings).Error
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBookingsForCleaner lists the bookings assigned to a cleaner.
func (s *Store) GetBookingsForCleaner(ctx context.Context, cleanerID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.execute(ctx, "get-bookings-for-cleaner", readRetries, func(tx *gorm.DB) error {
		return tx.Where("cleaner_id = ?", cleanerID).Order("date DESC").Find(&bookings).Error
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking inserts a booking. New bookings always start pending.
func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.Status = models.StatusPending
	return s.execute(ctx, "create-booking", writeRetries, func(tx *gorm.DB) error {
		return tx.Create(booking).Error
	})
}

// UpdateBooking merges the provided fields into a booking row and returns the
// post-update row. Status cannot be changed through this path.
func (s *Store) UpdateBooking(ctx context.Context, id string, fields map[string]any) (*models.Booking, error) {
	updates := filterColumns(fields, bookingColumns...)
	var booking models.Booking
	err := s.execute(ctx, "update-booking", writeRetries, func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Booking not found")
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&booking, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBookingStatus moves a booking through its status state machine:
// pending->confirmed, pending/confirmed->cancelled, confirmed->completed.
// Any other transition is rejected as a validation failure.
func (s *Store) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	var booking models.Booking
	err := s.execute(ctx, "update-booking-status", writeRetries, func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Booking not found")
			}
			return err
		}
		if !models.CanTransition(booking.Status, status) {
			return apperrors.Validation([]apperrors.Violation{{
				Field:   "status",
				Message: fmt.Sprintf("Cannot change booking status from %q to %q", booking.Status, status),
			}})
		}
		// Guard against a concurrent transition between the read and the
		// write: the update only applies while the row still holds the
		// status we validated against.
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", id, booking.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Validation([]apperrors.Violation{{
				Field:   "status",
				Message: "Booking status changed concurrently, please retry",
			}})
		}
		return tx.First(&booking, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
