package awsdocs

import (
	"fmt"

	errors "github.com/Laisky/errors/v2"
)

// ErrorKind classifies a failed call to the documentation service.
type ErrorKind int

const (
	// KindTransport covers connection failures, timeouts and unreadable bodies.
	KindTransport ErrorKind = iota + 1
	// KindStatus means the service answered with an HTTP status >= 400.
	KindStatus
	// KindDecode means the response body was not the expected JSON.
	KindDecode
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// APIError describes why a call to the documentation service failed.
type APIError struct {
	Kind ErrorKind
	// StatusCode is set for KindStatus.
	StatusCode int
	Err        error
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s error: status code %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
