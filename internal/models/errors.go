package models

import "errors"

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrValidation is returned when a required field is empty or a value is malformed.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when borrowing a borrowed book or returning an available one.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStorage is returned when the persistence medium rejects a read or write.
	ErrStorage = errors.New("storage failure")
)

// ErrorCode maps err to a stable code for API responses.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_FAILED"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrStorage):
		return "STORAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
