package shared

import "errors"

var (
	// ErrValidation indicates malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness clash such as a taken email.
	ErrConflict = errors.New("conflict")
	// ErrRateLimited indicates the caller exhausted its request quota.
	ErrRateLimited = errors.New("rate limited")
)

// Error carries a client-facing message alongside its error kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Validation builds an ErrValidation with the given message.
func Validation(msg string) error { return newError(ErrValidation, msg) }

// Unauthorized builds an ErrUnauthorized with the given message.
func Unauthorized(msg string) error { return newError(ErrUnauthorized, msg) }

// Forbidden builds an ErrForbidden with the given message.
func Forbidden(msg string) error { return newError(ErrForbidden, msg) }

// NotFound builds an ErrNotFound with the given message.
func NotFound(msg string) error { return newError(ErrNotFound, msg) }

// Conflict builds an ErrConflict with the given message.
func Conflict(msg string) error { return newError(ErrConflict, msg) }

// RateLimited builds an ErrRateLimited with the given message.
func RateLimited(msg string) error { return newError(ErrRateLimited, msg) }

// Message returns the client-facing message carried by err, if any.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message, true
	}
	return "", false
}
