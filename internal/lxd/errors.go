package lxd

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error envelope returned by the LXD API
// (response type "error", or a failed background operation).
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("lxd api error (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("lxd api error: %s", e.Message)
}

// TransportError wraps connectivity, TLS and protocol failures that happen
// before a well-formed API response is available.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("lxd transport error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an API error signalling that the
// addressed instance does not exist. The reconciler treats this as the
// normal "absent" observation, not a failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}

// IsTransport reports whether err originated below the API layer.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
