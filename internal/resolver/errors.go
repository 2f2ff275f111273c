package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the target was reachable but carried no identifier.
	ErrNotFound = errors.New("no identifier found")
	// ErrNetwork is matched by every *NetworkError.
	ErrNetwork = errors.New("network resolution failed")
	// ErrCacheMiss is returned by Cache.Get for unknown or expired keys.
	ErrCacheMiss = errors.New("cache miss")
)

// NetworkError covers timeouts, transport failures, redirect loops,
// unexpected statuses and undecodable bodies. It is never cached.
type NetworkError struct {
	URL    string
	Reason string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.URL, e.Reason, e.Err)
	}

	return fmt.Sprintf("resolve %s: %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNetwork) match any NetworkError.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func networkError(rawURL, reason string, err error) error {
	return &NetworkError{URL: rawURL, Reason: reason, Err: err}
}

// Outcome names the result of a resolution attempt for logs and events.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "network_error"
	}
}
