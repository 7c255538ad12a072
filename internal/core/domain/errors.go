package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusCoder is implemented by errors that declare the HTTP status they
// should be answered with.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an error with a declared HTTP status and a stable code.
type HTTPError struct {
	Status  int    // HTTP status code
	Code    string // Stable error code (e.g., "PG-AUTH-4010")
	Message string // Client-facing message
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// Is matches any *HTTPError carrying the same code.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// StatusCode implements StatusCoder.
func (e *HTTPError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(status int, code, message string) *HTTPError {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	return &HTTPError{
		Status:  e.Status,
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// WithMessage returns a copy of the error with a different message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Status:  e.Status,
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
	}
}

// StatusOf returns the status declared anywhere in err's chain, or 500.
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// GetErrorCode extracts the error code from an error if it's an HTTPError.
func GetErrorCode(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

var (
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = NewHTTPError(http.StatusUnauthorized, "PG-AUTH-4010", "Unauthorized")

	// ErrForbiddenOrigin indicates a cross-origin request outside the policy.
	ErrForbiddenOrigin = NewHTTPError(http.StatusForbidden, "PG-CORS-4030", "origin not allowed")

	// ErrMalformedBody indicates a request body that could not be decoded.
	ErrMalformedBody = NewHTTPError(http.StatusBadRequest, "PG-BODY-4000", "malformed request body")

	// ErrBodyTooLarge indicates a request body above the parser limit.
	ErrBodyTooLarge = NewHTTPError(http.StatusRequestEntityTooLarge, "PG-BODY-4130", "request entity too large")

	// ErrTooManyRequests indicates the client exceeded its request rate.
	ErrTooManyRequests = NewHTTPError(http.StatusTooManyRequests, "PG-RATE-4290", "too many requests")

	// ErrInternal is the fallback for errors without a declared status.
	ErrInternal = NewHTTPError(http.StatusInternalServerError, "PG-SYS-5000", "internal server error")
)
