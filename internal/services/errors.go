package services

import (
	"errors"
	"fmt"

	apperrors "github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/errors"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/grading"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Test specific errors
	ErrTestNotFound      = errors.New("test not found")
	ErrTestConfigInvalid = errors.New("test grade options are invalid")

	// Result specific errors
	ErrResultNotFound   = errors.New("result not found")
	ErrResultNotPending = errors.New("result is not waiting for manual review")
	ErrResultSuperseded = errors.New("result has already been regraded")
	ErrVerdictNotNeeded = errors.New("question does not need a manual verdict")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// badRequest keeps the grading engine's message and marks it as a bad request.
func badRequest(err error) error {
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsBadRequest checks if error was caused by the submitted data itself
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, grading.ErrInvalidSubmission)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrResultNotPending) ||
		errors.Is(err, ErrResultSuperseded)
}
