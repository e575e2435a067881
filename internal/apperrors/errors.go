package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// RetryableError indicates an error that might be resolved by retrying.
type RetryableError struct {
	Err error
}

// Error implements the error interface.
func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryable wraps the given error as a RetryableError, adding a message.
func NewRetryable(err error, message string, args ...interface{}) error {
	format := message + ": %w"
	allArgs := append(args, err)
	return &RetryableError{Err: fmt.Errorf(format, allArgs...)}
}

// FatalError indicates an error that is unlikely to be resolved by retrying.
type FatalError struct {
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// NewFatal wraps the given error as a FatalError, adding a message.
func NewFatal(err error, message string, args ...interface{}) error {
	format := message + ": %w"
	allArgs := append(args, err)
	return &FatalError{Err: fmt.Errorf(format, allArgs...)}
}

// --- Standard Error Definitions ---

var (
	// ErrNotFound indicates a requested resource was not found or is outside the caller's scope.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation indicates failure during data validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidPhoneNumber indicates a phone number that cannot be normalized.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	// ErrDatabase indicates a general database interaction error.
	ErrDatabase = errors.New("database error")
	// ErrNATS indicates a general NATS communication error.
	ErrNATS = errors.New("nats communication error")
	// ErrUnauthorized indicates a missing or invalid identity.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrMissingScopeParameter indicates a listing that requires an explicit agency filter.
	ErrMissingScopeParameter = errors.New("missing scope parameter")
	// ErrNoAgencyAssociation indicates a mutation by a principal without any agency membership.
	ErrNoAgencyAssociation = errors.New("user has no agency association")
	// ErrForbiddenCrossTenant indicates an action against an agency the principal does not belong to.
	ErrForbiddenCrossTenant = errors.New("forbidden for this agency")
	// ErrDuplicate indicates a conflict due to duplicate data (e.g., unique constraint).
	ErrDuplicate = errors.New("duplicate resource")
	// ErrConflict indicates a general conflict state.
	ErrConflict = errors.New("resource conflict")
	// ErrBadRequest indicates a malformed or invalid request from the client/caller.
	ErrBadRequest = errors.New("bad request")
	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timeout")
	// ErrExternalService indicates a failure in an AI or voice provider call.
	ErrExternalService = errors.New("external service error")
	// ErrUnsupportedProvider indicates an unknown text generation provider name.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrNoDocuments indicates a renewal comparison requested for a policy without documents.
	ErrNoDocuments = errors.New("no documents available for comparison")
)

// ValidationError carries field-level detail for a rejected write.
type ValidationError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidation builds a ValidationError.
func NewValidation(field, kind, message string) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Message: message}
}

// ValidationErrors collects several field errors from one write.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap makes ValidationErrors match ErrValidation.
func (ve ValidationErrors) Unwrap() error {
	return ErrValidation
}

// OrNil returns nil for an empty list so callers can return it directly.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// FieldErrors extracts the field-level details from err, if any.
func FieldErrors(err error) []*ValidationError {
	var list ValidationErrors
	if errors.As(err, &list) {
		return list
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return []*ValidationError{single}
	}
	return nil
}

// --- Helper functions for checking ---

// IsRetryable checks if the error is a RetryableError or wraps one.
func IsRetryable(err error) bool {
	var target *RetryableError
	return errors.As(err, &target)
}

// IsFatal checks if the error is a FatalError or wraps one.
func IsFatal(err error) bool {
	var target *FatalError
	return errors.As(err, &target)
}

// IsNotFoundError checks if the error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if the error is or wraps ErrValidation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDatabaseError checks if the error is or wraps ErrDatabase.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsNATSError checks if the error is or wraps ErrNATS.
func IsNATSError(err error) bool {
	return errors.Is(err, ErrNATS)
}

// IsUnauthorizedError checks if the error is or wraps ErrUnauthorized.
func IsUnauthorizedError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsDuplicateError checks if the error is or wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError checks if the error is or wraps ErrConflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsBadRequestError checks if the error is or wraps ErrBadRequest.
func IsBadRequestError(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsTimeoutError checks if the error is or wraps ErrTimeout.
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsAccessError reports whether err is one of the scoping failures that must be
// surfaced distinctly from not-found.
func IsAccessError(err error) bool {
	return errors.Is(err, ErrMissingScopeParameter) ||
		errors.Is(err, ErrNoAgencyAssociation) ||
		errors.Is(err, ErrForbiddenCrossTenant)
}

// IsExternalServiceError checks if the error is or wraps ErrExternalService.
func IsExternalServiceError(err error) bool {
	return errors.Is(err, ErrExternalService)
}
