package query

import (
	"errors"
	"net/http"
)

// Kind classifies a failed query.
type Kind int

const (
	// KindUnavailable means no index is loaded.
	KindUnavailable Kind = iota
	// KindBadRequest means the request body was rejected.
	KindBadRequest
	// KindInternal means embedding, search or passage lookup failed.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindBadRequest:
		return "bad_request"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the error type returned by Service.Query. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	if e.Kind == KindBadRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// AsError returns err as an *Error, wrapping unknown errors as KindInternal.
func AsError(err error) *Error {
	var qe *Error
	if errors.As(err, &qe) {
		return qe
	}
	return &Error{Kind: KindInternal, Message: "Error processing query: " + err.Error(), Err: err}
}
