package transport

import (
	"fmt"
	"time"
)

// NetworkError wraps a connectivity or transport failure that survived
// every attempt.
type NetworkError struct {
	Operation string
	Err       error
	Attempts  int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v",
		e.Operation, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the last attempt exceeded its time bound.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
	Err       error
	Attempts  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %d attempts (%s each): %v",
		e.Operation, e.Attempts, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// StatusError is the failure recorded for a non-success HTTP response on a
// non-final attempt.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
