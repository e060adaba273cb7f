// Package notify delivers short-lived user notifications (toasts) to the
// registered output surfaces.
package notify

import (
	"context"
	"time"
)

// Level is the visual weight of a toast.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is one transient notification.
type Toast struct {
	Level     Level
	Message   string
	Timestamp time.Time
}

// NewToast creates a toast stamped with the current time.
func NewToast(level Level, message string) *Toast {
	return &Toast{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Success is shorthand for a success toast.
func Success(message string) *Toast { return NewToast(LevelSuccess, message) }

// Error is shorthand for an error toast.
func Error(message string) *Toast { return NewToast(LevelError, message) }

// Info is shorthand for an informational toast.
func Info(message string) *Toast { return NewToast(LevelInfo, message) }

// Sender is the interface for notification surfaces.
type Sender interface {
	// Send shows the toast. Returns an error if it could not be delivered.
	Send(ctx context.Context, toast *Toast) error

	// Name returns the sender's name for logging purposes.
	Name() string
}

// Notifier is what producers of toasts depend on; *Dispatcher implements it.
type Notifier interface {
	Dispatch(ctx context.Context, toast *Toast)
}
