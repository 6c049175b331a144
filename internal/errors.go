package internal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/WMTcore/egg/pkg/cookie"
)

// HTTPError represents an HTTP error with the data needed for rendering.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// RequestID links the error to the context that produced it.
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// AsHTTPError extracts an HTTPError from err, unwrapping as needed.
// Returns nil if no HTTPError is in the chain.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// CookieLimitExceedError is raised through the cookieLimitExceed event when a
// serialized cookie crosses the browser size limit. It carries the offending
// name and value plus the context that set the cookie, so listeners can log
// through that context; the request itself continues.
type CookieLimitExceedError struct {
	Name  string
	Value string
	Ctx   *Context
}

func (e *CookieLimitExceedError) Error() string {
	return fmt.Sprintf("cookie %s's length(%d) exceeds the limit(%d)",
		e.Name, len(e.Value), cookie.LimitBytes)
}
