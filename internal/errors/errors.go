package errors

import "fmt"

// ErrorCode represents a knitcost error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrValidationRejected  ErrorCode = "VALIDATION_REJECTED"  // 422
	ErrMalformedImport     ErrorCode = "MALFORMED_IMPORT"     // 422
	ErrPersistenceFailure  ErrorCode = "PERSISTENCE_FAILURE"  // 500
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// KnitError represents a structured error with code, status, and details.
type KnitError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *KnitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *KnitError {
	return &KnitError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(identifier string) *KnitError {
	return &KnitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewValidationRejected creates a 422 error for a wizard step rejection.
// The message is user-facing and surfaced inline at the originating step.
func NewValidationRejected(msg string) *KnitError {
	return &KnitError{
		Code:    ErrValidationRejected,
		Status:  422,
		Message: msg,
	}
}

// NewMalformedImport creates a 422 error for a backup file that fails
// schema shape checks. The import is rejected wholesale.
func NewMalformedImport(msg string) *KnitError {
	return &KnitError{
		Code:    ErrMalformedImport,
		Status:  422,
		Message: msg,
	}
}

// NewPersistenceFailure creates a 500 error for a failed store read/write.
func NewPersistenceFailure(err error) *KnitError {
	msg := "persistence failure"
	if err != nil {
		msg = fmt.Sprintf("persistence failure: %v", err)
	}
	return &KnitError{
		Code:    ErrPersistenceFailure,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *KnitError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &KnitError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a KnitError with the given code.
func Is(err error, code ErrorCode) bool {
	if kErr, ok := err.(*KnitError); ok {
		return kErr.Code == code
	}
	return false
}
