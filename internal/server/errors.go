package server

import (
	"errors"
	"net/http"
)

// HTTPError is an error with the status code and message to send to the
// client. Err is logged but never exposed.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusText returns the standard text for the error's code.
func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// NewHTTPError creates an HTTPError. An empty message defaults to the
// status text.
func NewHTTPError(code int, message string, cause ...error) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{
		Code:    code,
		Message: message,
		Err:     errors.Join(cause...),
	}
}

func ErrBadRequest(message string, cause ...error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, cause...)
}

func ErrUnauthorized(message string, cause ...error) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, cause...)
}

func ErrNotFound(message string, cause ...error) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, cause...)
}

func ErrInternal(message string, cause ...error) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, cause...)
}

func ErrServiceUnavailable(message string, cause ...error) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, cause...)
}

// AsHTTPError extracts an HTTPError from err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// ErrorMapping translates a sentinel error into a status code and message.
type ErrorMapping struct {
	Target  error
	Message string
	Code    int
}

// Resolve converts err into an HTTPError. An HTTPError in the chain wins,
// then the first mapping whose target matches errors.Is, then 500.
func Resolve(err error, mappings ...ErrorMapping) *HTTPError {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return httpErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.Target) {
			return NewHTTPError(m.Code, m.Message, err)
		}
	}
	return ErrInternal("", err)
}
