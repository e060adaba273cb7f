package submit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned before any I/O when no endpoint URL is set.
	ErrNotConfigured = errors.New("endpoint URL is not configured")

	// ErrOffline is wrapped in a *transport.NetworkError when the device
	// reports no connectivity.
	ErrOffline = errors.New("device is offline")
)

// ServerError is an error the endpoint reported explicitly.
type ServerError struct {
	// Message is the server-supplied text; empty when none was given
	Message string

	// StatusCode is the HTTP status of the response carrying the error
	StatusCode int
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		if e.StatusCode != 0 {
			return fmt.Sprintf("server error (HTTP %d)", e.StatusCode)
		}

		return "server error"
	}

	return "server error: " + e.Message
}
