package attendance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/notify"
	"github.com/inovacc/kintai/internal/store"
	"github.com/inovacc/kintai/internal/submit"
	"github.com/inovacc/kintai/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	action submit.Action
	fields submit.Fields
}

// fakeSubmitter records calls and fails while err is set.
type fakeSubmitter struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, action submit.Action, fields submit.Fields) (*submit.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{action: action, fields: fields})
	if f.err != nil {
		return nil, f.err
	}

	return &submit.Envelope{Status: submit.StatusOK, Attempts: 1}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

// recordingUI tracks the busy indicator and the last render.
type recordingUI struct {
	busy     int
	maxBusy  int
	renders  int
	rendered model.AttendanceRecord
}

func (u *recordingUI) Busy() func() {
	u.busy++
	if u.busy > u.maxBusy {
		u.maxBusy = u.busy
	}

	return func() { u.busy-- }
}

func (u *recordingUI) Render(rec model.AttendanceRecord) {
	u.renders++
	u.rendered = rec
}

type recordingNotifier struct {
	toasts []*notify.Toast
}

func (n *recordingNotifier) Dispatch(_ context.Context, t *notify.Toast) {
	n.toasts = append(n.toasts, t)
}

func (n *recordingNotifier) last() *notify.Toast {
	if len(n.toasts) == 0 {
		return nil
	}

	return n.toasts[len(n.toasts)-1]
}

// movableClock is a wall clock tests can set.
type movableClock struct {
	now time.Time
}

func (c *movableClock) Now() time.Time { return c.now }

func (c *movableClock) set(hour, minute int) {
	c.now = time.Date(c.now.Year(), c.now.Month(), c.now.Day(), hour, minute, 0, 0, time.Local)
}

type fixture struct {
	backend   *store.Memory
	clock     *movableClock
	submitter *fakeSubmitter
	ui        *recordingUI
	notifier  *recordingNotifier
	confirm   bool
	session   *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		backend:   store.NewMemory(),
		clock:     &movableClock{now: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local)},
		submitter: &fakeSubmitter{},
		ui:        &recordingUI{},
		notifier:  &recordingNotifier{},
	}

	f.session = f.open(t)

	return f
}

func (f *fixture) open(t *testing.T) *Session {
	t.Helper()

	s, err := NewSession(context.Background(), Deps{
		Repository: store.NewRepository(f.backend, f.clock),
		Submitter:  f.submitter,
		Clock:      f.clock,
		UI:         f.ui,
		Notifier:   f.notifier,
		Confirmer:  ConfirmFunc(func(string) bool { return f.confirm }),
		AppURL:     "https://example.com/app",
	})
	require.NoError(t, err)

	return s
}

func TestNewSession_RequiresCollaborators(t *testing.T) {
	_, err := NewSession(context.Background(), Deps{})
	require.Error(t, err)
}

func TestClockIn_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.session.ClockIn(ctx)
	require.True(t, res.OK(), res.Message)

	assert.Equal(t, "✅ 出勤を記録しました", res.Message)
	assert.Equal(t, model.StateClockedIn, f.session.State())
	require.NotNil(t, res.Record.ClockIn)
	assert.Equal(t, "09:00", *res.Record.ClockIn)
	assert.Nil(t, res.Record.ClockOut)
	assert.Nil(t, res.Record.WorkingHours)

	require.Len(t, f.submitter.calls, 1)
	assert.Equal(t, submit.ActionClockIn, f.submitter.calls[0].action)
	assert.Equal(t, "2026/10/14 09:00", f.submitter.calls[0].fields[submit.FieldTimestamp])

	assert.Equal(t, 0, f.ui.busy)
	assert.Equal(t, 1, f.ui.maxBusy)
	assert.Equal(t, res.Record, f.ui.rendered)

	require.NotNil(t, f.notifier.last())
	assert.Equal(t, notify.LevelSuccess, f.notifier.last().Level)
}

func TestClockIn_RejectedStatesNeverSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.session.ClockIn(ctx).OK())

	res := f.session.ClockIn(ctx)
	require.NotNil(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrAlreadyClockedIn)
	assert.Equal(t, "既に出勤済みです", res.Message)

	f.clock.set(18, 0)
	require.True(t, f.session.ClockOut(ctx).OK())

	res = f.session.ClockIn(ctx)
	require.NotNil(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrAlreadyClockedOut)

	assert.Equal(t, 2, f.submitter.count())
	assert.Equal(t, 0, f.ui.busy)
}

func TestClockOut_RejectedStatesNeverSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.session.ClockOut(ctx)
	require.NotNil(t, res.Err)
	assert.Equal(t, KindNotClockedIn, res.Err.Kind)
	assert.Equal(t, 0, f.submitter.count())
	assert.Equal(t, notify.LevelError, f.notifier.last().Level)

	require.True(t, f.session.ClockIn(ctx).OK())
	f.clock.set(17, 0)
	require.True(t, f.session.ClockOut(ctx).OK())

	res = f.session.ClockOut(ctx)
	require.NotNil(t, res.Err)
	assert.Equal(t, KindAlreadyClockedOut, res.Err.Kind)
	assert.Equal(t, 2, f.submitter.count())
}

func TestClockOut_BeforeClockInIsInvalidTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.session.ClockIn(ctx).OK())

	f.clock.set(8, 30)

	res := f.session.ClockOut(ctx)
	require.NotNil(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrInvalidTime)
	assert.ErrorIs(t, res.Err, clock.ErrInvalidTime)
	assert.Equal(t, 1, f.submitter.count())
	assert.Equal(t, model.StateClockedIn, f.session.State())
}

func TestFullDay_PersistsAndReloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.session.ClockIn(ctx).OK())

	f.clock.set(17, 30)

	res := f.session.ClockOut(ctx)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "✅ 退勤を記録しました（8時間30分）", res.Message)
	require.NotNil(t, res.Record.WorkingHours)
	assert.Equal(t, model.WorkingHours{Hours: 8, Minutes: 30}, *res.Record.WorkingHours)

	reloaded := f.open(t)
	assert.Equal(t, res.Record, reloaded.Record())
	assert.Equal(t, model.StateClockedOut, reloaded.State())
	assert.Equal(t, model.Display{ClockIn: "09:00", ClockOut: "17:30", WorkingHours: "8時間30分"}, reloaded.Record().Display())
}

func TestFailedSubmission_LeavesRecordUntouched(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{
			name:    "network",
			err:     &transport.NetworkError{Operation: "submit", Err: errors.New("connection refused"), Attempts: 3},
			kind:    KindNetwork,
			message: "インターネット接続を確認してください",
		},
		{
			name:    "timeout",
			err:     &transport.TimeoutError{Operation: "submit", Timeout: time.Second, Err: context.DeadlineExceeded, Attempts: 3},
			kind:    KindTimeout,
			message: "通信がタイムアウトしました。再度お試しください",
		},
		{
			name:    "server with text",
			err:     &submit.ServerError{Message: "シートが見つかりません"},
			kind:    KindServer,
			message: "サーバーエラーが発生しました。しばらくしてから再度お試しください（シートが見つかりません）",
		},
		{
			name:    "not configured",
			err:     submit.ErrNotConfigured,
			kind:    KindNotConfigured,
			message: "送信先URLが設定されていません",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			before := f.session.Record()

			f.submitter.err = tt.err

			res := f.session.ClockIn(ctx)
			require.NotNil(t, res.Err)
			assert.Equal(t, tt.kind, res.Err.Kind)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, before, f.session.Record())
			assert.Equal(t, before, f.open(t).Record())
			assert.Equal(t, 0, f.ui.busy)

			toast := f.notifier.last()
			require.NotNil(t, toast)
			assert.Equal(t, notify.LevelError, toast.Level)
			assert.Equal(t, tt.message, toast.Message)
		})
	}
}

func TestCompleteTask(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		f := newFixture(t)

		res := f.session.CompleteTask(context.Background())
		assert.True(t, res.Cancelled)
		assert.False(t, res.OK())
		assert.Nil(t, res.Err)
		assert.Equal(t, 0, f.submitter.count())
		assert.Equal(t, 0, f.ui.maxBusy)
	})

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t)
		f.confirm = true
		before := f.session.Record()

		res := f.session.CompleteTask(context.Background())
		require.True(t, res.OK(), res.Message)
		assert.Equal(t, "🎉 課題完了報告を送信しました！", res.Message)
		assert.Equal(t, before, res.Record)

		require.Len(t, f.submitter.calls, 1)
		c := f.submitter.calls[0]
		assert.Equal(t, submit.ActionCompleteTask, c.action)
		assert.Equal(t, "2026/10/14 09:00", c.fields[submit.FieldTimestamp])
		assert.Equal(t, "https://example.com/app", c.fields[submit.FieldAppURL])
	})

	t.Run("nil confirmer declines", func(t *testing.T) {
		sub := &fakeSubmitter{}
		s, err := NewSession(context.Background(), Deps{
			Repository: store.NewRepository(store.NewMemory(), clock.System{}),
			Submitter:  sub,
			Clock:      clock.System{},
		})
		require.NoError(t, err)

		assert.True(t, s.CompleteTask(context.Background()).Cancelled)
		assert.Equal(t, 0, sub.count())
	})
}

func TestRolloverAtActionTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.session.ClockIn(ctx).OK())
	f.clock.set(18, 0)
	require.True(t, f.session.ClockOut(ctx).OK())

	f.clock.now = f.clock.now.AddDate(0, 0, 1)
	f.clock.set(9, 15)

	res := f.session.ClockIn(ctx)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "2026/10/15", res.Record.Date)
	assert.Equal(t, "09:15", *res.Record.ClockIn)
	assert.Nil(t, res.Record.ClockOut)
}

type failingRepository struct {
	Repository
}

func (failingRepository) Save(context.Context, model.AttendanceRecord) error {
	return errors.New("disk full")
}

func TestPersistFailure_KeepsRemoteOutcome(t *testing.T) {
	clk := &movableClock{now: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local)}
	notifier := &recordingNotifier{}

	s, err := NewSession(context.Background(), Deps{
		Repository: failingRepository{Repository: store.NewRepository(store.NewMemory(), clk)},
		Submitter:  &fakeSubmitter{},
		Clock:      clk,
		Notifier:   notifier,
	})
	require.NoError(t, err)

	res := s.ClockIn(context.Background())
	require.True(t, res.OK())
	assert.Equal(t, model.StateClockedIn, s.State())

	require.Len(t, notifier.toasts, 2)
	assert.Equal(t, notify.LevelError, notifier.toasts[0].Level)
	assert.Equal(t, notify.LevelSuccess, notifier.toasts[1].Level)
}

func TestClockIn_RetriesThroughTransport(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := transport.NewClient(
		transport.WithMaxAttempts(3),
		transport.WithTimeout(time.Second),
		transport.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
	sub := submit.New(submit.Config{Endpoint: srv.URL, UserID: "user01", Name: "kintai"}, client)

	clk := clock.Fixed(time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local))
	s, err := NewSession(context.Background(), Deps{
		Repository: store.NewRepository(store.NewMemory(), clk),
		Submitter:  sub,
		Clock:      clk,
	})
	require.NoError(t, err)

	res := s.ClockIn(context.Background())
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClockIn_NullEnvelopeIsNotAcknowledged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	client := transport.NewClient(transport.WithMaxAttempts(1))
	sub := submit.New(submit.Config{Endpoint: srv.URL, UserID: "user01"}, client)

	backend := store.NewMemory()
	clk := clock.Fixed(time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local))
	s, err := NewSession(context.Background(), Deps{
		Repository: store.NewRepository(backend, clk),
		Submitter:  sub,
		Clock:      clk,
	})
	require.NoError(t, err)

	res := s.ClockIn(context.Background())
	require.NotNil(t, res.Err)
	assert.Equal(t, KindUnknown, res.Err.Kind)
	assert.Equal(t, model.StateNotClockedIn, s.State())

	stored, err := store.NewRepository(backend, clk).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored.ClockIn)
}

func TestClockIn_OfflineFailsFast(t *testing.T) {
	status := submit.NewStatus(false)
	sender := &countingSender{}
	sub := submit.New(submit.Config{Endpoint: "http://example.invalid"}, sender, submit.WithConnectivity(status))

	clk := clock.Fixed(time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local))
	s, err := NewSession(context.Background(), Deps{
		Repository:   store.NewRepository(store.NewMemory(), clk),
		Submitter:    sub,
		Clock:        clk,
		Connectivity: status,
	})
	require.NoError(t, err)

	res := s.ClockIn(context.Background())
	require.NotNil(t, res.Err)
	assert.Equal(t, KindNetwork, res.Err.Kind)
	assert.ErrorIs(t, res.Err, submit.ErrOffline)
	assert.Equal(t, int32(0), sender.calls.Load())
}

type countingSender struct {
	calls atomic.Int32
}

func (c *countingSender) Send(context.Context, *transport.Request) (*transport.Response, error) {
	c.calls.Add(1)
	return &transport.Response{StatusCode: http.StatusOK, Body: []byte(`{"status":"ok"}`), Attempts: 1}, nil
}
