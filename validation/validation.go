// Package validation holds the declarative input checks for the booking flow
// and identity fields. It performs no I/O; known slug sets are supplied by the
// caller.
package validation

import (
	"strings"

	"github.com/sparklean/sparklean-api/apperrors"
)

// Errors is an ordered list of field violations. It satisfies the error
// interface so it can flow through apperrors.From, which maps it to
// VALIDATION_ERROR/400.
type Errors []apperrors.Violation

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Field + ": " + v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Violations exposes the field list for error normalization.
func (e Errors) Violations() []apperrors.Violation {
	return e
}

func (e *Errors) add(field, message string) {
	*e = append(*e, apperrors.Violation{Field: field, Message: message})
}

// OrNil returns the list as an error, or nil when no violation was recorded.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
