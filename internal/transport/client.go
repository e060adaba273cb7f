// Package transport delivers request bodies over HTTP with a per-attempt
// timeout and a bounded, linearly backed-off retry loop.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/inovacc/kintai/internal/params"
)

// maxErrorBody caps how much of a failed response body ends up in logs.
const maxErrorBody = 512

// Sleeper waits d unless ctx is done first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Request is one logical submission.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// ID correlates the attempts of one request in the logs
	ID string
}

// Response is the raw outcome of the successful (or final) attempt.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client sends requests with retry.
type Client struct {
	httpClient  *http.Client
	maxAttempts int
	timeout     time.Duration
	baseDelay   time.Duration
	logger      *slog.Logger
	sleep       Sleeper
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its own Timeout should be zero or
// larger than the per-attempt timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMaxAttempts sets how many attempts a request gets.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithTimeout sets the bound of a single attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBaseDelay sets the backoff unit; attempt n waits n*d before the next.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.baseDelay = d
		}
	}
}

// WithLogger sets the logger receiving attempt failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper replaces the backoff wait, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// NewClient creates a retrying client with the compiled defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		maxAttempts: params.DefaultRetryCount,
		timeout:     params.DefaultTimeout,
		baseDelay:   params.DefaultRetryDelay,
		logger:      slog.New(slog.DiscardHandler),
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MaxAttempts returns the configured attempt count.
func (c *Client) MaxAttempts() int { return c.maxAttempts }

// Send delivers req, retrying failed attempts. A successful attempt returns
// at once. A non-success status is retried except on the final attempt,
// where the response is handed back as-is. After the last failed attempt the
// error is a *TimeoutError when that attempt timed out and a *NetworkError
// otherwise.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	var (
		lastErr     error
		lastTimeout bool
	)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		final := attempt == c.maxAttempts

		resp, timedOut, err := c.attempt(ctx, req)
		if err == nil {
			resp.Attempts = attempt

			if resp.OK() || final {
				return resp, nil
			}

			err = &StatusError{StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("send canceled: %w", ctxErr)
		}

		lastErr, lastTimeout = err, timedOut

		c.logger.Warn("submission attempt failed",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"request_id", req.ID,
			"timeout", timedOut,
			"error", err,
		)

		if final {
			break
		}

		if err := c.sleep(ctx, c.baseDelay*time.Duration(attempt)); err != nil {
			return nil, fmt.Errorf("send canceled: %w", err)
		}
	}

	if lastTimeout {
		return nil, &TimeoutError{
			Operation: "submit",
			Timeout:   c.timeout,
			Err:       lastErr,
			Attempts:  c.maxAttempts,
		}
	}

	return nil, &NetworkError{
		Operation: "submit",
		Err:       lastErr,
		Attempts:  c.maxAttempts,
	}
}

// attempt performs one bounded call. The body is read before the attempt
// context is released.
func (c *Client) attempt(ctx context.Context, req *Request) (*Response, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, isTimeout(attemptCtx, err), fmt.Errorf("failed to send request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, isTimeout(attemptCtx, err), fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, false, nil
}

func isTimeout(attemptCtx context.Context, err error) bool {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }

	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}

	return string(body)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
