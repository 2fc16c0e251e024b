package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/middleware"
	"github.com/sparklean/sparklean-api/models"
	"github.com/sparklean/sparklean-api/services"
	"github.com/sparklean/sparklean-api/store"
	"github.com/sparklean/sparklean-api/validation"
)

// BookingController serves the booking routes.
type BookingController struct {
	store  *store.Store
	images services.ImageService
	logger zerolog.Logger
}

// NewBookingController creates a BookingController.
func NewBookingController(st *store.Store, images services.ImageService, logger zerolog.Logger) *BookingController {
	return &BookingController{store: st, images: images, logger: logger}
}

// UpdateBookingRequest is the body for partially updating a booking. Only
// provided fields change; status is excluded (see UpdateStatus).
type UpdateBookingRequest struct {
	CleanerID *string         `json:"cleaner_id"`
	Duration  *int            `json:"duration"`
	Notes     *string         `json:"notes"`
	Metadata  *map[string]any `json:"metadata"`
}

// UpdateStatusRequest is the body for a booking status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

// Create handles POST /api/bookings - validates and creates a booking.
func (bc *BookingController) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var input validation.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "body", Message: "Invalid request data"},
		}))
		return
	}

	serviceSlugs, err := bc.store.ServiceSlugs(ctx)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	citySlugs, err := bc.store.CitySlugs(ctx)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if err := validation.ValidateBooking(input, serviceSlugs, citySlugs); err != nil {
		apperrors.Respond(c, err)
		return
	}

	subject, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	customer, err := bc.store.GetUserBySubject(ctx, subject)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	service, err := bc.store.GetServiceBySlug(ctx, input.Service)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	booking := models.Booking{
		CustomerID:  customer.ID,
		ServiceType: input.Service,
		Date:        input.Date,
		Duration:    input.Duration,
		Price:       service.BasePrice,
		Address:     fmt.Sprintf("%s, %s %s", input.Address.Street, input.Address.Suburb, input.Address.Postcode),
		Notes:       input.Notes,
		Metadata: map[string]any{
			"city": input.City,
			"time": input.Time,
		},
	}
	if len(input.Extras) > 0 {
		booking.Metadata["extras"] = input.Extras
	}

	if err := bc.store.CreateBooking(ctx, &booking); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// List handles GET /api/bookings?customerId=ID - lists a customer's bookings.
// A customer with zero bookings gets an empty list, not an error.
func (bc *BookingController) List(c *gin.Context) {
	customerID := c.Query("customerId")
	if customerID == "" {
		apperrors.Respond(c, apperrors.New("Customer ID is required", apperrors.CodeValidation, http.StatusBadRequest))
		return
	}

	bookings, err := bc.store.GetBookingsByCustomerID(c.Request.Context(), customerID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Get handles GET /api/bookings/:id.
func (bc *BookingController) Get(c *gin.Context) {
	booking, err := bc.store.GetBookingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	bc.attachPhotoURL(booking)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Update handles PATCH /api/bookings/:id - merges the provided fields.
func (bc *BookingController) Update(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "body", Message: "Invalid request data"},
		}))
		return
	}

	fields := make(map[string]any)
	if req.CleanerID != nil {
		fields["cleaner_id"] = *req.CleanerID
	}
	if req.Duration != nil {
		if *req.Duration < validation.MinDuration || *req.Duration > validation.MaxDuration {
			apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
				{Field: "duration", Message: "Duration must be between 2 and 8 hours"},
			}))
			return
		}
		fields["duration"] = *req.Duration
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Metadata != nil {
		fields["metadata"] = *req.Metadata
	}

	booking, err := bc.store.UpdateBooking(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// UpdateStatus handles PATCH /api/bookings/:id/status - moves a booking
// through its status state machine.
func (bc *BookingController) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "status", Message: "Status must be one of pending, confirmed, completed, cancelled"},
		}))
		return
	}

	booking, err := bc.store.UpdateBookingStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// UploadPhoto handles POST /api/bookings/:id/photo - attaches a property
// photo to a booking.
func (bc *BookingController) UploadPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := bc.store.GetBookingByID(ctx, id); err != nil {
		apperrors.Respond(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "photo", Message: "Photo file is required"},
		}))
		return
	}

	key, err := bc.images.UploadImage(fileHeader)
	if err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "photo", Message: err.Error()},
		}))
		return
	}

	booking, err := bc.store.UpdateBooking(ctx, id, map[string]any{"photo_key": key})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	bc.attachPhotoURL(booking)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// attachPhotoURL fills the computed presigned URL for a booking's photo.
func (bc *BookingController) attachPhotoURL(booking *models.Booking) {
	if bc.images == nil || booking.PhotoKey == nil {
		return
	}
	url, err := bc.images.GetImageURL(*booking.PhotoKey)
	if err != nil {
		bc.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("failed to presign photo URL")
		return
	}
	booking.PhotoURL = &url
}
