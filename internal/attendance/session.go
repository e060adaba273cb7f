package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/notify"
	"github.com/inovacc/kintai/internal/submit"
)

const (
	msgClockedIn        = "✅ 出勤を記録しました"
	msgClockedOut       = "✅ 退勤を記録しました（%s）"
	msgTaskCompleted    = "🎉 課題完了報告を送信しました！"
	msgTaskCancelled    = "課題完了報告をキャンセルしました"
	msgSaveFailed       = "記録の保存に失敗しました"
	msgOnline           = "オンラインに復帰しました"
	msgOffline          = "オフラインです"
	ConfirmCompleteTask = "課題完了報告を送信しますか？"
)

// Submitter delivers an action to the remote endpoint.
type Submitter interface {
	Submit(ctx context.Context, action submit.Action, fields submit.Fields) (*submit.Envelope, error)
}

// Repository loads and saves the record of today.
type Repository interface {
	Load(ctx context.Context) (model.AttendanceRecord, error)
	Save(ctx context.Context, rec model.AttendanceRecord) error
}

// UI is the display surface of a session.
type UI interface {
	// Busy shows the busy indicator; the returned func hides it again.
	Busy() (release func())

	// Render shows the current record.
	Render(rec model.AttendanceRecord)
}

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Deps are the collaborators of a Session. Repository, Submitter and Clock
// are required.
type Deps struct {
	Repository Repository
	Submitter  Submitter
	Clock      clock.Clock

	UI       UI
	Notifier notify.Notifier

	// Confirmer approves task completion; nil declines every request
	Confirmer Confirmer

	// Connectivity is toggled by ConnectivityChanged events; hand the same
	// Status to the submitter so it can fail fast while offline
	Connectivity *submit.Status

	// AppURL is reported with a task completion
	AppURL string

	Logger *slog.Logger
}

// Result is the outcome of one transition attempt.
type Result struct {
	Action submit.Action

	// Record is a copy of the record after the attempt
	Record model.AttendanceRecord

	// Err is nil on success and on cancellation
	Err *Error

	// Message is the localized text shown to the user
	Message string

	// Cancelled is set when the user declined the confirmation
	Cancelled bool

	// Attempts is how many transport attempts the submission took
	Attempts int
}

// OK reports a completed transition.
func (r Result) OK() bool {
	return r.Err == nil && !r.Cancelled
}

// Session owns the live record of today.
type Session struct {
	record model.AttendanceRecord

	repo      Repository
	submitter Submitter
	clock     clock.Clock
	ui        UI
	notifier  notify.Notifier
	confirmer Confirmer
	online    *submit.Status
	appURL    string
	logger    *slog.Logger
}

// NewSession loads the record of today and renders it.
func NewSession(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Repository == nil || deps.Submitter == nil || deps.Clock == nil {
		return nil, fmt.Errorf("session requires a repository, a submitter and a clock")
	}

	s := &Session{
		repo:      deps.Repository,
		submitter: deps.Submitter,
		clock:     deps.Clock,
		ui:        deps.UI,
		notifier:  deps.Notifier,
		confirmer: deps.Confirmer,
		online:    deps.Connectivity,
		appURL:    deps.AppURL,
		logger:    deps.Logger,
	}

	if s.ui == nil {
		s.ui = nopUI{}
	}

	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}

	if s.confirmer == nil {
		s.confirmer = ConfirmFunc(func(string) bool { return false })
	}

	if s.online == nil {
		s.online = submit.NewStatus(true)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	rec, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading today's record: %w", err)
	}

	s.record = rec
	s.ui.Render(s.Record())

	return s, nil
}

// Record returns a copy of the live record.
func (s *Session) Record() model.AttendanceRecord {
	return s.record.Clone()
}

// State returns the state machine position of the live record.
func (s *Session) State() model.State {
	return s.record.State()
}

// Online reports the last known connectivity.
func (s *Session) Online() bool {
	return s.online.Online()
}

// ClockIn records the start of the working day.
func (s *Session) ClockIn(ctx context.Context) Result {
	const action = submit.ActionClockIn

	s.ensureToday(ctx)

	switch s.record.State() {
	case model.StateClockedIn:
		return s.reject(ctx, action, ErrAlreadyClockedIn)
	case model.StateClockedOut:
		return s.reject(ctx, action, ErrAlreadyClockedOut)
	}

	release := s.ui.Busy()
	defer release()

	now := s.clock.Now()
	tod := clock.TimeOfDay(now)

	env, err := s.submitter.Submit(ctx, action, submit.Fields{
		submit.FieldTimestamp: clock.Timestamp(now),
	})
	if err != nil {
		return s.fail(ctx, action, err)
	}

	s.commit(ctx, model.AttendanceRecord{
		Date:    clock.Date(now),
		ClockIn: &tod,
	})

	return s.succeed(ctx, action, msgClockedIn, env)
}

// ClockOut records the end of the working day.
func (s *Session) ClockOut(ctx context.Context) Result {
	const action = submit.ActionClockOut

	s.ensureToday(ctx)

	switch s.record.State() {
	case model.StateNotClockedIn:
		return s.reject(ctx, action, ErrNotClockedIn)
	case model.StateClockedOut:
		return s.reject(ctx, action, ErrAlreadyClockedOut)
	}

	now := s.clock.Now()
	tod := clock.TimeOfDay(now)

	hours, err := clock.ComputeDuration(*s.record.ClockIn, tod)
	if err != nil {
		return s.reject(ctx, action, &Error{Kind: KindInvalidTime, Err: err})
	}

	release := s.ui.Busy()
	defer release()

	env, err := s.submitter.Submit(ctx, action, submit.Fields{
		submit.FieldTimestamp: clock.Timestamp(now),
	})
	if err != nil {
		return s.fail(ctx, action, err)
	}

	next := s.record.Clone()
	next.ClockOut = &tod
	next.WorkingHours = &hours
	s.commit(ctx, next)

	return s.succeed(ctx, action, fmt.Sprintf(msgClockedOut, hours), env)
}

// CompleteTask reports task completion once the user confirms it. The
// record is not touched.
func (s *Session) CompleteTask(ctx context.Context) Result {
	const action = submit.ActionCompleteTask

	if !s.confirmer.Confirm(ConfirmCompleteTask) {
		s.logger.Debug("task completion declined")

		return Result{
			Action:    action,
			Record:    s.Record(),
			Message:   msgTaskCancelled,
			Cancelled: true,
		}
	}

	release := s.ui.Busy()
	defer release()

	env, err := s.submitter.Submit(ctx, action, submit.Fields{
		submit.FieldTimestamp: clock.NowTimestamp(s.clock),
		submit.FieldAppURL:    s.appURL,
	})
	if err != nil {
		return s.fail(ctx, action, err)
	}

	return s.succeed(ctx, action, msgTaskCompleted, env)
}

// SetOnline records a connectivity change and announces it.
func (s *Session) SetOnline(ctx context.Context, online bool) {
	if !s.online.Set(online) {
		return
	}

	s.logger.Info("connectivity changed", "online", online)

	if online {
		s.notifier.Dispatch(ctx, notify.Success(msgOnline))
	} else {
		s.notifier.Dispatch(ctx, notify.Error(msgOffline))
	}
}

// ensureToday starts a fresh record when the date rolled over while the
// session was open.
func (s *Session) ensureToday(ctx context.Context) {
	today := clock.TodayDate(s.clock)
	if s.record.Date == today {
		return
	}

	s.logger.Info("date rolled over, starting a new record", "previous", s.record.Date, "today", today)
	s.commit(ctx, model.NewRecord(today))
}

// commit replaces the live record, persists and renders it. A failed write
// keeps the in-memory record: the remote side already accepted the action.
func (s *Session) commit(ctx context.Context, next model.AttendanceRecord) {
	s.record = next

	if err := s.repo.Save(ctx, s.record); err != nil {
		s.logger.Error("failed to persist record", "error", err)
		s.notifier.Dispatch(ctx, notify.Error(msgSaveFailed))
	}

	s.ui.Render(s.Record())
}

func (s *Session) reject(ctx context.Context, action submit.Action, e *Error) Result {
	s.logger.Info("transition rejected", "action", action, "kind", e.Kind, "state", s.record.State())
	s.notifier.Dispatch(ctx, notify.Error(e.Message()))

	return Result{
		Action:  action,
		Record:  s.Record(),
		Err:     e,
		Message: e.Message(),
	}
}

func (s *Session) fail(ctx context.Context, action submit.Action, err error) Result {
	e := wrap(err)

	s.logger.Error("submission failed", "action", action, "kind", e.Kind, "error", err)
	s.notifier.Dispatch(ctx, notify.Error(e.Message()))

	return Result{
		Action:  action,
		Record:  s.Record(),
		Err:     e,
		Message: e.Message(),
	}
}

func (s *Session) succeed(ctx context.Context, action submit.Action, message string, env *submit.Envelope) Result {
	s.notifier.Dispatch(ctx, notify.Success(message))

	res := Result{
		Action:  action,
		Record:  s.Record(),
		Message: message,
	}

	if env != nil {
		res.Attempts = env.Attempts
	}

	return res
}

type nopUI struct{}

func (nopUI) Busy() func()                  { return func() {} }
func (nopUI) Render(model.AttendanceRecord) {}

type nopNotifier struct{}

func (nopNotifier) Dispatch(context.Context, *notify.Toast) {}
