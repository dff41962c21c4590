package model

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrQuotaExceeded is an expected business outcome, not a system fault.
	ErrQuotaExceeded = errors.New("analysis quota exceeded")
	ErrUnauthorized  = errors.New("unauthorized")
	// ErrUnavailable wraps storage and transport failures. The consume step
	// was not committed, so the whole operation may be retried.
	ErrUnavailable = errors.New("entitlement service unavailable")

	ErrInvalidImage  = errors.New("unsupported image")
	ErrImageTooLarge = errors.New("image too large")
)

// ProviderError is returned when the vision provider rejects or fails a
// request. Message is surfaced to the end user as is.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
