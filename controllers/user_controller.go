package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sparklean/sparklean-api/apperrors"
	"github.com/sparklean/sparklean-api/store"
	"github.com/sparklean/sparklean-api/validation"
)

// UserController serves the user routes.
type UserController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewUserController creates a UserController.
func NewUserController(st *store.Store, logger zerolog.Logger) *UserController {
	return &UserController{store: st, logger: logger}
}

// UpdateUserRequest is the body for partially updating a user.
type UpdateUserRequest struct {
	Email *string `json:"email"`
	Role  *string `json:"role" binding:"omitempty,oneof=customer cleaner admin"`
}

// GetByEmail handles GET /api/users?email=EMAIL.
func (uc *UserController) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		apperrors.Respond(c, apperrors.New("Email is required", apperrors.CodeValidation, http.StatusBadRequest))
		return
	}

	user, err := uc.store.GetUserByEmail(c.Request.Context(), validation.NormalizeEmail(email))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Get handles GET /api/users/:id.
func (uc *UserController) Get(c *gin.Context) {
	user, err := uc.store.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update handles PATCH /api/users/:id - merges the provided fields.
func (uc *UserController) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation([]apperrors.Violation{
			{Field: "body", Message: "Invalid request data"},
		}))
		return
	}

	fields := make(map[string]any)
	if req.Email != nil {
		email := validation.NormalizeEmail(*req.Email)
		if err := validation.ValidateLogin(validation.LoginInput{Email: email}); err != nil {
			apperrors.Respond(c, err)
			return
		}
		fields["email"] = email
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}

	if _, err := uc.store.UpdateUser(c.Request.Context(), c.Param("id"), fields); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
