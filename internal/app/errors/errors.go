package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types
var (
	// Recognition outcomes
	ErrUnrecognized  = New("could not understand the audio")
	ErrListenTimeout = New("listening timed out while waiting for phrase to start")

	// Upload errors
	ErrEmptyUpload       = New("uploaded audio is empty")
	ErrUploadTruncated   = New("uploaded audio is shorter than its declared size")
	ErrUnsupportedFormat = New("unsupported audio format")
	ErrUploadTooLarge    = New("uploaded audio exceeds the size limit")

	// Provider errors
	ErrProviderNotFound = New("provider not found")
	ErrProviderTimeout  = New("provider timeout")

	// Device errors
	ErrMicrophoneBusy = New("microphone is already in use")

	// Configuration errors
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidConfig = New("invalid configuration")
)

// Kind separates benign recognition misses from failed operations.
type Kind string

const (
	KindNone            Kind = ""
	KindUnrecognized    Kind = "unrecognized"
	KindOperationFailed Kind = "operation_failed"
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message && t.cause == nil
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Classify maps an error onto the two user-facing outcome kinds.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case Is(err, ErrUnrecognized):
		return KindUnrecognized
	default:
		return KindOperationFailed
	}
}

// IsUnrecognized reports whether err means audio was captured but not understood.
func IsUnrecognized(err error) bool {
	return Classify(err) == KindUnrecognized
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Wrapf(ErrInvalidConfig, "%s is invalid: %s", field, reason)
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Wrapf(ErrInvalidConfig, "%s is required", field)
}
