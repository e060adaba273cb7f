// Package submit builds attendance payloads, hands them to the retrying
// transport and interprets the endpoint's response envelope.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/inovacc/kintai/internal/transport"
)

// Action names understood by the endpoint.
type Action string

const (
	ActionClockIn      Action = "clock_in"
	ActionClockOut     Action = "clock_out"
	ActionCompleteTask Action = "complete_task"
)

// Envelope statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Field names used by the actions.
const (
	FieldTimestamp = "timestamp"
	FieldAppURL    = "appUrl"
)

// Fields are the action-specific payload entries.
type Fields map[string]string

// Sender delivers a request; *transport.Client implements it.
type Sender interface {
	Send(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// Envelope is the decoded response of the endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	// Raw keeps every top-level field, including Status and Message
	Raw map[string]json.RawMessage `json:"-"`

	// Attempts is how many transport attempts the submission took
	Attempts int `json:"-"`
}

// Config identifies the endpoint and the user.
type Config struct {
	Endpoint string
	UserID   string
	Name     string
}

// Submitter sends attendance actions to the remote endpoint.
type Submitter struct {
	cfg    Config
	sender Sender
	online Connectivity
	logger *slog.Logger
	newID  func() string
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithConnectivity sets the online check consulted before each submission.
func WithConnectivity(c Connectivity) Option {
	return func(s *Submitter) {
		if c != nil {
			s.online = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the request id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Submitter) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a Submitter.
func New(cfg Config, sender Sender, opts ...Option) *Submitter {
	s := &Submitter{
		cfg:    cfg,
		sender: sender,
		online: alwaysOnline{},
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit posts action with fields and returns the parsed envelope. It fails
// with ErrNotConfigured, a *transport.NetworkError, a *transport.TimeoutError
// or a *ServerError.
func (s *Submitter) Submit(ctx context.Context, action Action, fields Fields) (*Envelope, error) {
	if s.cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	if !s.online.Online() {
		return nil, &transport.NetworkError{Operation: "submit", Err: ErrOffline}
	}

	body, err := json.Marshal(s.payload(action, fields))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	id := s.newID()
	header.Set("X-Request-Id", id)

	s.logger.Debug("submitting action", "action", action, "request_id", id)

	resp, err := s.sender.Send(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    s.cfg.Endpoint,
		Header: header,
		Body:   body,
		ID:     id,
	})
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		if !resp.OK() {
			return nil, &ServerError{StatusCode: resp.StatusCode}
		}

		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	env.Attempts = resp.Attempts

	if env.Status == StatusError || !resp.OK() {
		serverErr := &ServerError{Message: env.Message}
		if !resp.OK() {
			serverErr.StatusCode = resp.StatusCode
		}

		return nil, serverErr
	}

	s.logger.Debug("action accepted", "action", action, "request_id", id, "attempts", resp.Attempts)

	return env, nil
}

// payload merges the identity fields with the action fields. Identity keys
// cannot be overridden by fields.
func (s *Submitter) payload(action Action, fields Fields) map[string]string {
	p := make(map[string]string, len(fields)+3)

	for k, v := range fields {
		p[k] = v
	}

	p["action"] = string(action)
	p["userId"] = s.cfg.UserID
	p["name"] = s.cfg.Name

	return p
}

var errNullEnvelope = errors.New("response envelope is null")

func decodeEnvelope(body []byte) (*Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	if raw == nil {
		return nil, errNullEnvelope
	}

	env := &Envelope{Raw: raw}

	if v, ok := raw["status"]; ok {
		// A non-string status is left empty and treated as success.
		_ = json.Unmarshal(v, &env.Status)
	}

	if v, ok := raw["message"]; ok {
		_ = json.Unmarshal(v, &env.Message)
	}

	return env, nil
}
