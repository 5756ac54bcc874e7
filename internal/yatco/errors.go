package yatco

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData means the vessel is listed but its detail is not visible to this credential
	ErrNoData = errors.New("yatco: no data returned for vessel")

	ErrNotConfigured = errors.New("yatco: API token not configured")
)

// TransportError wraps network level failures (DNS, refused connections, timeouts)
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("yatco %s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned for any response status other than 200
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("yatco %s: API error (status %d): %s", e.Op, e.StatusCode, e.Body)
}

// ParseError means the body was not JSON of the expected shape
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("yatco %s: failed to parse response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsVesselError reports whether err is one of the per-vessel failures a sync run
// counts and skips instead of aborting
func IsVesselError(err error) bool {
	var te *TransportError
	var he *HTTPStatusError
	var pe *ParseError
	return errors.Is(err, ErrNoData) || errors.As(err, &te) || errors.As(err, &he) || errors.As(err, &pe)
}
