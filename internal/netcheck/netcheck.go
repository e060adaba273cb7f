// Package netcheck watches whether the submission endpoint is reachable and
// reports online/offline transitions.
package netcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// DefaultDialTimeout bounds a single probe.
const DefaultDialTimeout = 3 * time.Second

// ProbeFunc returns nil when the network is usable.
type ProbeFunc func(ctx context.Context) error

// HostPort derives the dial address of an endpoint URL.
func HostPort(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	if u.Hostname() == "" {
		return "", errors.New("endpoint has no host")
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		default:
			port = "443"
		}
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}

// Dial returns a probe that opens and closes a TCP connection to the
// endpoint host.
func Dial(endpoint string, timeout time.Duration) (ProbeFunc, error) {
	addr, err := HostPort(endpoint)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	return func(ctx context.Context) error {
		d := net.Dialer{Timeout: timeout}

		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}

		return conn.Close()
	}, nil
}

// Watch probes every interval until ctx is done and calls onChange whenever
// the outcome flips. The device is assumed online until a probe fails.
func Watch(ctx context.Context, interval time.Duration, probe ProbeFunc, onChange func(online bool)) {
	online := true

	check := func() {
		next := probe(ctx) == nil
		if ctx.Err() != nil || next == online {
			return
		}

		online = next
		onChange(online)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
