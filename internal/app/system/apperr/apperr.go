// Package apperr defines the error kinds the services report and how each
// kind surfaces at the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the request boundary.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidInput
	DuplicateEmail
	InvalidCredentials
	Unauthorized
	StoreUnavailable
	NotFound
	RateLimited
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	InvalidInput:       "invalid_input",
	DuplicateEmail:     "duplicate_email",
	InvalidCredentials: "invalid_credentials",
	Unauthorized:       "unauthorized",
	StoreUnavailable:   "store_unavailable",
	NotFound:           "not_found",
	RateLimited:        "rate_limited",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error carries a Kind, a message that is safe to show to the client, and
// optionally the underlying cause (which is logged, never shown).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error without an underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns an *Error that keeps err for errors.Is / errors.As.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-safe message for err. Errors that are not
// *Error never expose their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}

// Status maps a Kind to the HTTP status used at the boundary.
func Status(kind Kind) int {
	switch kind {
	case InvalidInput:
		return http.StatusBadRequest
	case DuplicateEmail:
		return http.StatusConflict
	case InvalidCredentials, Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case RateLimited:
		return http.StatusTooManyRequests
	case StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
