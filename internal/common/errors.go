// Package common defines shared constants and sentinel errors used across
// the server layers of DrivenPass. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. Each kind maps to exactly one HTTP status.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorConflict     = errors.New("conflict")
	ErrorValidation   = errors.New("validation error")

	// Storage for vault exports is not configured.
	ErrorUnavailable = errors.New("unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Field encryption errors: empty plaintext, malformed ciphertext or key mismatch.
	ErrCrypto = errors.New("crypto error")
)

// Error pairs a sentinel kind with a message that is safe to show to the
// caller. errors.Is(err, kind) holds for every Error built from kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Message returns the caller-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
