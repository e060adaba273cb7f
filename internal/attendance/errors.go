package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/submit"
	"github.com/inovacc/kintai/internal/transport"
)

// Kind classifies every failure a transition can end with.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindServer
	KindAlreadyClockedIn
	KindNotClockedIn
	KindAlreadyClockedOut
	KindInvalidTime
	KindNotConfigured
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindTimeout:
		return "TimeoutError"
	case KindServer:
		return "ServerError"
	case KindAlreadyClockedIn:
		return "AlreadyClockedIn"
	case KindNotClockedIn:
		return "NotClockedIn"
	case KindAlreadyClockedOut:
		return "AlreadyClockedOut"
	case KindInvalidTime:
		return "InvalidTime"
	case KindNotConfigured:
		return "NotConfigured"
	default:
		return "Unknown"
	}
}

var messages = map[Kind]string{
	KindNetwork:           "インターネット接続を確認してください",
	KindTimeout:           "通信がタイムアウトしました。再度お試しください",
	KindServer:            "サーバーエラーが発生しました。しばらくしてから再度お試しください",
	KindAlreadyClockedIn:  "既に出勤済みです",
	KindNotClockedIn:      "出勤記録がありません。先に出勤打刻してください",
	KindAlreadyClockedOut: "既に退勤済みです",
	KindInvalidTime:       "時刻が不正です",
	KindNotConfigured:     "送信先URLが設定されていません",
	KindUnknown:           "予期しないエラーが発生しました",
}

// Message is the localized user-facing text of a kind.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}

	return messages[KindUnknown]
}

// Local reports whether the kind is a precondition violation detected before
// any network call.
func (k Kind) Local() bool {
	switch k {
	case KindAlreadyClockedIn, KindNotClockedIn, KindAlreadyClockedOut, KindInvalidTime:
		return true
	}

	return false
}

// Error is a classified transition failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Err == nil
	}

	return false
}

// Message is the localized text, with the server's own text appended when
// the endpoint supplied one.
func (e *Error) Message() string {
	var serverErr *submit.ServerError
	if e.Kind == KindServer && errors.As(e.Err, &serverErr) && serverErr.Message != "" {
		return fmt.Sprintf("%s（%s）", e.Kind.Message(), serverErr.Message)
	}

	return e.Kind.Message()
}

// Sentinels for errors.Is.
var (
	ErrAlreadyClockedIn  = &Error{Kind: KindAlreadyClockedIn}
	ErrNotClockedIn      = &Error{Kind: KindNotClockedIn}
	ErrAlreadyClockedOut = &Error{Kind: KindAlreadyClockedOut}
	ErrInvalidTime       = &Error{Kind: KindInvalidTime}
)

// Classify maps any error onto the taxonomy.
func Classify(err error) Kind {
	var (
		attErr     *Error
		timeoutErr *transport.TimeoutError
		netErr     *transport.NetworkError
		serverErr  *submit.ServerError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &attErr):
		return attErr.Kind
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &serverErr):
		return KindServer
	case errors.Is(err, submit.ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, clock.ErrInvalidTime):
		return KindInvalidTime
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindUnknown
	}
}

// wrap classifies err into an *Error.
func wrap(err error) *Error {
	var attErr *Error
	if errors.As(err, &attErr) {
		return attErr
	}

	return &Error{Kind: Classify(err), Err: err}
}
