package errors

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error. Field carries the
// document path of the offending node (e.g. "modules[2].items[0].type").
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors. The importer
// aggregates every discovered issue into one of these before touching the
// store, so callers can report them all at once.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// InvalidTypeError reports a type or gameType string that cannot be mapped to
// the closed enumeration. It carries the raw value and the allowed set; the
// caller is expected to wrap it with the offending node's path.
type InvalidTypeError struct {
	Raw     string   `json:"raw"`
	Allowed []string `json:"allowed"`
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid type %q, allowed: %s", e.Raw, strings.Join(e.Allowed, ", "))
}

func NewInvalidTypeError(raw string, allowed []string) *InvalidTypeError {
	return &InvalidTypeError{Raw: raw, Allowed: allowed}
}

// AsValidationError flattens an invalid-type error into the aggregate form.
func (e *InvalidTypeError) AsValidationError(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(e.Allowed, ", ")),
		Value:   e.Raw,
		Rule:    "closed_enum",
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	// Custom validators
	case "item_type":
		return "must be a valid item type (resource, slide, exercise, tp, game)"
	case "chapter_kind":
		return "must be content or game"
	case "course_status":
		return "must be draft or published"
	case "access_type":
		return "must be free, paid or invite"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
