// Package validation implements the client-side form checks that run before
// any mutation is forwarded upstream. Failures surface as field-level
// errors, never as toasts, and never trigger a network call.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phoneRe   = regexp.MustCompile(`^[0-9]{10}$`)
	gstRe     = regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{13}$`)
)

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidateEnum checks a field is one of allowed values.
func ValidateEnum(ve *ValidationErrors, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// ValidatePincode checks a field is a 6-digit Indian postal code.
func ValidatePincode(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if !pincodeRe.MatchString(value) {
		ve.Add(field, "must be a 6-digit pincode")
	}
}

// ValidatePhone checks a field is a 10-digit phone number.
func ValidatePhone(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if !phoneRe.MatchString(value) {
		ve.Add(field, "must be a 10-digit phone number")
	}
}

// ValidateGSTNumber checks a field looks like a GST registration number.
func ValidateGSTNumber(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if !gstRe.MatchString(strings.ToUpper(value)) {
		ve.Add(field, "must be a valid GST number")
	}
}

// ValidateEmail checks a field is a valid email (if non-empty).
func ValidateEmail(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		ve.Add(field, "must be a valid email address")
	}
}

// ValidatePositiveFloat checks a field is > 0.
func ValidatePositiveFloat(ve *ValidationErrors, field string, value float64) {
	if value <= 0 {
		ve.Add(field, "must be a positive number")
	}
}

// ValidateRange checks an int falls within [min, max].
func ValidateRange(ve *ValidationErrors, field string, value, min, max int) {
	if value < min || value > max {
		ve.Add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}
