package submit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inovacc/kintai/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSender struct {
	calls atomic.Int32
}

func (c *countingSender) Send(context.Context, *transport.Request) (*transport.Response, error) {
	c.calls.Add(1)
	return &transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"status":"ok"}`)}, nil
}

// endpoint records the decoded payloads it receives.
type endpoint struct {
	mu       sync.Mutex
	payloads []map[string]string
	headers  []http.Header
}

func (e *endpoint) handler(respond func(n int, w http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var p map[string]string
		_ = json.Unmarshal(body, &p)

		e.mu.Lock()
		e.payloads = append(e.payloads, p)
		e.headers = append(e.headers, r.Header.Clone())
		n := len(e.payloads)
		e.mu.Unlock()

		respond(n, w)
	}
}

func (e *endpoint) snapshot() ([]map[string]string, []http.Header) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]map[string]string(nil), e.payloads...), append([]http.Header(nil), e.headers...)
}

func ok(_ int, w http.ResponseWriter) {
	_, _ = io.WriteString(w, `{"status":"ok","row":12}`)
}

func newSubmitter(t *testing.T, url string, delays *[]time.Duration, opts ...Option) *Submitter {
	t.Helper()

	client := transport.NewClient(
		transport.WithMaxAttempts(3),
		transport.WithTimeout(time.Second),
		transport.WithBaseDelay(time.Second),
		transport.WithSleeper(func(_ context.Context, d time.Duration) error {
			if delays != nil {
				*delays = append(*delays, d)
			}
			return nil
		}),
	)

	base := []Option{WithIDGenerator(func() string { return "req-1" })}

	return New(Config{Endpoint: url, UserID: "user01", Name: "konaka"}, client, append(base, opts...)...)
}

func TestSubmit_NotConfigured(t *testing.T) {
	sender := &countingSender{}
	s := New(Config{UserID: "user01"}, sender)

	_, err := s.Submit(context.Background(), ActionClockIn, Fields{FieldTimestamp: "2026/10/14 09:00"})
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, sender.calls.Load())
}

func TestSubmit_OfflineFailsFast(t *testing.T) {
	sender := &countingSender{}
	s := New(Config{Endpoint: "http://example.invalid"}, sender, WithConnectivity(NewStatus(false)))

	_, err := s.Submit(context.Background(), ActionClockIn, nil)

	var netErr *transport.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.ErrorIs(t, err, ErrOffline)
	assert.Zero(t, sender.calls.Load())
}

func TestSubmit_Payload(t *testing.T) {
	ep := &endpoint{}
	srv := httptest.NewServer(ep.handler(ok))
	defer srv.Close()

	s := newSubmitter(t, srv.URL, nil)

	env, err := s.Submit(context.Background(), ActionCompleteTask, Fields{
		FieldTimestamp: "2026/10/14 18:00",
		FieldAppURL:    "https://example.com/app",
		"userId":       "spoofed",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, env.Status)
	assert.Equal(t, 1, env.Attempts)
	assert.JSONEq(t, `12`, string(env.Raw["row"]))

	payloads, headers := ep.snapshot()
	require.Len(t, payloads, 1)
	assert.Equal(t, map[string]string{
		"action":    "complete_task",
		"userId":    "user01",
		"name":      "konaka",
		"timestamp": "2026/10/14 18:00",
		"appUrl":    "https://example.com/app",
	}, payloads[0])
	assert.Equal(t, "application/json", headers[0].Get("Content-Type"))
	assert.Equal(t, "req-1", headers[0].Get("X-Request-Id"))
}

func TestSubmit_ServerReportedError(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantText    string
	}{
		{
			name:        "with message",
			body:        `{"status":"error","message":"sheet locked"}`,
			wantMessage: "sheet locked",
			wantText:    "server error: sheet locked",
		},
		{
			name:     "without message",
			body:     `{"status":"error"}`,
			wantText: "server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			s := newSubmitter(t, srv.URL, nil)

			_, err := s.Submit(context.Background(), ActionClockIn, Fields{FieldTimestamp: "2026/10/14 09:00"})

			var serverErr *ServerError
			require.ErrorAs(t, err, &serverErr)
			assert.Equal(t, tt.wantMessage, serverErr.Message)
			assert.Equal(t, tt.wantText, serverErr.Error())
			assert.Zero(t, serverErr.StatusCode, "2xx responses carry no status code")
		})
	}
}

func TestSubmit_RetriesThenSucceeds(t *testing.T) {
	ep := &endpoint{}
	srv := httptest.NewServer(ep.handler(func(n int, w http.ResponseWriter) {
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		ok(n, w)
	}))
	defer srv.Close()

	var delays []time.Duration

	s := newSubmitter(t, srv.URL, &delays)

	env, err := s.Submit(context.Background(), ActionClockOut, Fields{FieldTimestamp: "2026/10/14 17:30"})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, env.Status)
	assert.Equal(t, 3, env.Attempts)
	payloads, _ := ep.snapshot()
	assert.Len(t, payloads, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestSubmit_FinalNonSuccessWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	s := newSubmitter(t, srv.URL, nil)

	_, err := s.Submit(context.Background(), ActionClockIn, nil)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
	assert.Empty(t, serverErr.Message)
}

func TestSubmit_UndecodableSuccessBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json": "not json",
		"null":     "null",
		"array":    "[]",
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			s := newSubmitter(t, srv.URL, nil)

			env, err := s.Submit(context.Background(), ActionClockIn, nil)
			require.Error(t, err)
			assert.Nil(t, env)

			var serverErr *ServerError
			assert.False(t, errors.As(err, &serverErr))
		})
	}
}

func TestStatus_Set(t *testing.T) {
	var s Status

	assert.True(t, s.Online())
	assert.False(t, s.Set(true), "no change expected")
	assert.True(t, s.Set(false))
	assert.False(t, s.Online())
	assert.True(t, s.Set(true))
	assert.True(t, s.Online())
}
