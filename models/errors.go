package models

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Controllers map these to HTTP status codes; nothing
// below this layer writes HTTP responses.
var (
	ErrValidation           = errors.New("validation error")
	ErrConfigurationMissing = errors.New("no active wastage configuration")
	ErrConcurrencyConflict  = errors.New("concurrent ledger write conflict")
	ErrStateTransition      = errors.New("invalid state transition")
	ErrAuthorization        = errors.New("not authorized")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrNotFound             = errors.New("record not found")
)

func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func StateTransitionErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrStateTransition, fmt.Sprintf(format, args...))
}
