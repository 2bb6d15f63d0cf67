package services

import (
	"errors"
	"fmt"

	apperrors "github.com/formacode/course-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Course tree specific errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseAccessDenied = errors.New("access denied to course")
	ErrCourseTitleMissing = errors.New("course title is required")
	ErrModuleNotFound     = errors.New("module not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrChapterNotFound    = errors.New("chapter not found")

	// Game session specific errors
	ErrSessionNotFound     = errors.New("game session not found")
	ErrGameUnavailable     = errors.New("game content is invalid or unavailable")
	ErrItemNotPlayable     = errors.New("item does not carry playable game content")
	ErrSessionNotActive    = errors.New("game session is not active")
	ErrSessionAccessDenied = errors.New("access denied to game session")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PersistenceError wraps a storage failure raised while writing a course
// tree. RolledBack reports whether the transaction was unwound cleanly;
// when false the store may hold a partial subtree and needs operator
// attention.
type PersistenceError struct {
	Op         string `json:"op"`
	CourseID   uint   `json:"course_id,omitempty"`
	RolledBack bool   `json:"rolled_back"`
	Err        error  `json:"-"`
}

func (pe *PersistenceError) Error() string {
	state := "rolled back"
	if !pe.RolledBack {
		state = "store may be inconsistent"
	}
	return fmt.Sprintf("persistence failure during %s (%s): %v", pe.Op, state, pe.Err)
}

func (pe *PersistenceError) Unwrap() error {
	return pe.Err
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPersistenceError(op string, courseID uint, rolledBack bool, err error) *PersistenceError {
	return &PersistenceError{
		Op:         op,
		CourseID:   courseID,
		RolledBack: rolledBack,
		Err:        err,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrModuleNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrChapterNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrCourseAccessDenied) ||
		errors.Is(err, ErrSessionAccessDenied)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var ite *apperrors.InvalidTypeError
	return errors.As(err, &ite)
}

// IsPersistence checks if error represents a storage write failure
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
