package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Code identifies a failure category. The set is closed: every error that
// crosses a response or log boundary carries exactly one of these.
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeAuth       Code = "AUTH_ERROR"
	CodeDatabase   Code = "DATABASE_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeForbidden  Code = "FORBIDDEN"
	CodeInternal   Code = "INTERNAL_ERROR"
	CodeRateLimit  Code = "RATE_LIMIT_ERROR"
)

// AppError is the tagged error used throughout the API. Status defaults to
// 500 when constructed through New without an explicit status.
type AppError struct {
	Message  string         `json:"message"`
	Code     Code           `json:"code"`
	Status   int            `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError with the given code and status.
func New(message string, code Code, status int) *AppError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &AppError{Message: message, Code: code, Status: status}
}

// WithMeta attaches structured metadata and returns the same error.
func (e *AppError) WithMeta(key string, value any) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// NotFound builds the standard missing-entity error.
func NotFound(message string) *AppError {
	return New(message, CodeNotFound, http.StatusNotFound)
}

// Forbidden builds the standard authorization-denied error.
func Forbidden(message string) *AppError {
	return New(message, CodeForbidden, http.StatusForbidden)
}

// Unauthorized builds the standard missing/invalid-session error.
func Unauthorized(message string) *AppError {
	return New(message, CodeAuth, http.StatusUnauthorized)
}

// Database builds a database failure error.
func Database(message string) *AppError {
	return New(message, CodeDatabase, http.StatusInternalServerError)
}

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation builds a VALIDATION_ERROR/400 carrying the field violations.
func Validation(violations []Violation) *AppError {
	e := New("Validation failed", CodeValidation, http.StatusBadRequest)
	return e.WithMeta("errors", violations)
}

// violationLister lets validation.Errors convert without an import cycle.
type violationLister interface {
	error
	Violations() []Violation
}

// From is the single normalization point. Already-tagged errors pass through
// unchanged, validation failures become VALIDATION_ERROR/400 with the field
// list, anything else becomes INTERNAL_ERROR/500.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var lister violationLister
	if errors.As(err, &lister) {
		return Validation(lister.Violations())
	}
	return New(err.Error(), CodeInternal, http.StatusInternalServerError)
}

// Log writes the normalized error with its code and originating context so
// operators can correlate failures across the request path.
func Log(logger zerolog.Logger, context string, err error) *AppError {
	appErr := From(err)
	logger.Error().
		Str("context", context).
		Str("code", string(appErr.Code)).
		Int("status", appErr.Status).
		Interface("metadata", appErr.Metadata).
		Msg(appErr.Message)
	return appErr
}

// Respond writes the error body used by every API route. Validation errors
// expose the field violation list; everything else exposes the message only.
func Respond(c *gin.Context, err error) {
	appErr := From(err)
	if appErr.Code == CodeValidation {
		if violations, ok := appErr.Metadata["errors"]; ok {
			c.JSON(appErr.Status, gin.H{"error": violations})
			return
		}
	}
	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}
