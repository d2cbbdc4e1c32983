package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// The error kinds the services report back to the transport layer.
// Each carries the HTTP status class it maps to, so handlers never
// have to guess.

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
func (e *ValidationError) Status() int   { return http.StatusBadRequest }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s was not found", e.Resource) }
func (e *NotFoundError) Status() int   { return http.StatusNotFound }

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }
func (e *ForbiddenError) Status() int   { return http.StatusForbidden }

// ConflictError marks an operation against a terminal state, like editing
// a message that was already soft-deleted.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }
func (e *ConflictError) Status() int   { return http.StatusConflict }

// InternalError wraps a persistence failure. The wrapped cause is for the
// logs; callers only ever see the opaque message.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string { return "internal error" }
func (e *InternalError) Unwrap() error { return e.Cause }
func (e *InternalError) Status() int   { return http.StatusInternalServerError }

func Validation(format string, v ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, v...)}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Forbidden(format string, v ...any) error {
	return &ForbiddenError{Reason: fmt.Sprintf(format, v...)}
}

func Conflict(format string, v ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, v...)}
}

func Internal(cause error) error {
	return &InternalError{Cause: cause}
}

// StatusOf extracts the HTTP status for any error. Unknown errors are
// treated as internal failures.
func StatusOf(err error) int {
	var s interface{ Status() int }
	if errors.As(err, &s) {
		return s.Status()
	}
	return http.StatusInternalServerError
}
