package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by every component. Callers match with errors.Is.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrAuthentication      = errors.New("authentication error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstream            = errors.New("upstream error")
	ErrDelivery            = errors.New("delivery error")
	ErrDeviceNotFound      = errors.New("device not found")
)

// APIError describes a failed call to a remote HTTP API
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Kind       error // one of the taxonomy sentinels
	Err        error // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v (%d) at %s: %s (caused by: %v)", e.Kind, e.StatusCode, e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("%v (%d) at %s: %s", e.Kind, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap exposes both the taxonomy sentinel and the transport error
func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Unavailable builds an APIError for a request that never got a response
func Unavailable(endpoint string, err error) *APIError {
	return &APIError{
		Endpoint: endpoint,
		Message:  "request failed",
		Kind:     ErrUpstreamUnavailable,
		Err:      err,
	}
}

// FromStatus builds an APIError for a non-success HTTP response.
// Gateway failures are ErrUpstreamUnavailable, everything else ErrUpstream;
// rejected credentials are the login call's concern, not a status mapping.
func FromStatus(statusCode int, endpoint, message string) *APIError {
	kind := ErrUpstream
	switch statusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		kind = ErrUpstreamUnavailable
	}
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Kind:       kind,
	}
}

// ExitCode maps an error onto the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration):
		return 2
	case errors.Is(err, ErrAuthentication):
		return 3
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrUpstream):
		return 4
	case errors.Is(err, ErrDeviceNotFound):
		return 5
	default:
		return 1
	}
}
