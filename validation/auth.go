package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Password length bounds.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
)

// LoginInput is the body of a login request.
type LoginInput struct {
	Email string `json:"email"`
}

// SignUpInput is the body of a sign-up request.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePasswordInput is the body of a password-change request.
type UpdatePasswordInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateLogin checks a login request.
func ValidateLogin(in LoginInput) error {
	var errs Errors
	checkEmail(&errs, in.Email)
	return errs.OrNil()
}

// ValidateSignUp checks a sign-up request.
func ValidateSignUp(in SignUpInput) error {
	var errs Errors
	checkEmail(&errs, in.Email)
	checkPassword(&errs, "password", in.Password)
	return errs.OrNil()
}

// ValidateUpdatePassword checks a password-change request. A mismatch between
// the two fields is attributed to confirmPassword.
func ValidateUpdatePassword(in UpdatePasswordInput) error {
	var errs Errors
	checkPassword(&errs, "password", in.Password)
	if in.Password != in.ConfirmPassword {
		errs.add("confirmPassword", "Passwords don't match")
	}
	return errs.OrNil()
}

func checkEmail(errs *Errors, email string) {
	if err := validate.Var(email, "required,email"); err != nil {
		errs.add("email", "Please enter a valid email address")
	}
}

func checkPassword(errs *Errors, field, password string) {
	if len(password) < MinPasswordLength {
		errs.add(field, "Password must be at least 8 characters long")
		return
	}
	if len(password) > MaxPasswordLength {
		errs.add(field, "Password must be at most 100 characters long")
		return
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		errs.add(field, "Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
}

// NormalizeEmail lowercases and trims an email for unique-key comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
