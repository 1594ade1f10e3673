// Package apperror defines the single error type that crosses the boundary
// between services and HTTP handlers.
//
// Every failure site builds an *Error with a Kind and a user-safe Message.
// The wrapped cause (Err) is for logs only and is never sent to the client.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure and decides its HTTP status.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTooLarge    Kind = "too_large"
	KindRateLimited Kind = "rate_limited"
	KindUpstream    Kind = "upstream"
	KindInternal    Kind = "internal"
)

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation is a user-actionable input problem (400).
func Validation(msg string, err error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

// TooLarge means the upload exceeded the body limit (413).
func TooLarge(msg string, err error) *Error {
	return &Error{Kind: KindTooLarge, Message: msg, Err: err}
}

// RateLimited means the client exhausted its request budget (429).
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Upstream is a failure of the LLM provider (500).
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Internal is a local filesystem or programming failure (500).
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From returns err as an *Error. Anything that is not already tagged becomes
// an internal error with a generic message.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Failed to process PDF", err)
}
