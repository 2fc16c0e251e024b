package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/store"
)

// ProfileController serves the profile routes.
type ProfileController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewProfileController creates a ProfileController.
func NewProfileController(st *store.Store, logger zerolog.Logger) *ProfileController {
	return &ProfileController{store: st, logger: logger}
}

// UpdateProfileRequest is the body for partially updating a profile. Pointer
// fields distinguish "absent" from "set to empty": only provided keys change.
type UpdateProfileRequest struct {
	FirstName *string         `json:"first_name"`
	LastName  *string         `json:"last_name"`
	Phone     *string         `json:"phone"`
	Address   *string         `json:"address"`
	City      *string         `json:"city"`
	State     *string         `json:"state"`
	Postcode  *string         `json:"postcode"`
	Metadata  *map[string]any `json:"metadata"`
}

// Get handles GET /api/profiles/:id.
func (pc *ProfileController) Get(c *gin.Context) {
	profile, err := pc.store.GetProfileByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Update handles PATCH /api/profiles/:id - merges the provided fields and
// returns the post-update profile.
func (pc *ProfileController) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "body", Message: "Invalid request data"},
		}))
		return
	}

	fields := make(map[string]any)
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.State != nil {
		fields["state"] = *req.State
	}
	if req.Postcode != nil {
		fields["postcode"] = *req.Postcode
	}
	if req.Metadata != nil {
		fields["metadata"] = *req.Metadata
	}

	profile, err := pc.store.UpdateProfile(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
