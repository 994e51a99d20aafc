// Package apperror is the flow-level error taxonomy. Services return these;
// the response package maps them onto the envelope exactly once.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type E struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

func New(status int, code, message string) *E {
	return &E{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *E {
	return New(http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(message string) *E {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(message string) *E {
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(message string) *E {
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(message string) *E {
	return New(http.StatusConflict, "CONFLICT", message)
}

func Internal(message string, err error) *E {
	return &E{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: message, Err: err}
}

// From extracts an *E from err, or wraps it as INTERNAL.
func From(err error) *E {
	var e *E
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error", err)
}
