package models

import "errors"

// ValidationError marks a request that failed field validation. The HTTP
// layer translates it to a 400 response before anything is persisted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
