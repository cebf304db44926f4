package notion

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingToken is returned when the integration token is empty.
	ErrMissingToken = errors.New("notion: missing integration token")

	// ErrRequestFailed is returned when the HTTP round trip fails.
	ErrRequestFailed = errors.New("notion: request failed")

	// ErrDecodeFailed is returned when a response body cannot be decoded.
	ErrDecodeFailed = errors.New("notion: failed to decode response")

	// ErrPropertyMissing is returned when a page has no property with the given name.
	ErrPropertyMissing = errors.New("notion: property missing")

	// ErrPropertyType is returned when a property has an unexpected type.
	ErrPropertyType = errors.New("notion: unexpected property type")
)

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: api error: status=%d", e.Status)
	}
	return fmt.Sprintf("notion: api error: status=%d code=%s: %s", e.Status, e.Code, e.Message)
}

// IsRetryable reports whether err is a rate limit, a server error or a
// transport failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrRequestFailed)
}
