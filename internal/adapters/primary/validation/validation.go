package validation

import (
	"strconv"
	"strings"

	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
)

// Validator accumulates field-level validation errors for request DTOs.
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// NotEqual rejects a specific placeholder value.
func (v *Validator) NotEqual(field, value, forbidden, message string) *Validator {
	if value == forbidden {
		v.errors.Add(field, message)
	}
	return v
}

// OneOf validates that a value is in the allowed set
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// IntRange validates that an integer lies in [min, max] inclusive
func (v *Validator) IntRange(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.errors.Add(field, "Must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return v
}

// Fail records a custom error for a field
func (v *Validator) Fail(field, message string) *Validator {
	v.errors.Add(field, message)
	return v
}
