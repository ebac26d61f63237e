// README: Gateway failure kinds.
package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means the gateway rejected the configured credential.
	ErrAuth = errors.New("gateway: credential rejected")
	// ErrRateLimited means the gateway throttled the request.
	ErrRateLimited = errors.New("gateway: rate limited")
	// ErrEmptyResponse means a successful response carried no text.
	ErrEmptyResponse = errors.New("gateway: empty response")
)

// GatewayError is any other failed exchange. StatusCode is 0 when the request
// never produced an HTTP response.
type GatewayError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gateway: request failed: %v", e.Err)
	}
	return fmt.Sprintf("gateway: status %d %s", e.StatusCode, e.Status)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// errorForStatus maps a non-2xx HTTP status to a failure kind.
func errorForStatus(code int, status string) error {
	switch code {
	case 401, 403:
		return fmt.Errorf("%w (status %d)", ErrAuth, code)
	case 429:
		return fmt.Errorf("%w (status %d)", ErrRateLimited, code)
	default:
		return &GatewayError{StatusCode: code, Status: status}
	}
}
