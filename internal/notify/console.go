package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// ConsoleSender prints toasts as styled lines.
type ConsoleSender struct {
	out io.Writer
}

// NewConsoleSender writes toasts to out.
func NewConsoleSender(out io.Writer) *ConsoleSender {
	return &ConsoleSender{out: out}
}

func (c *ConsoleSender) Name() string { return "console" }

func (c *ConsoleSender) Send(_ context.Context, toast *Toast) error {
	_, err := fmt.Fprintln(c.out, Style(toast.Level).Render(Decorate(toast)))
	return err
}

// Style returns the lipgloss style of a level.
func Style(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return successStyle
	case LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}

// Decorate prefixes error toasts with a cross mark.
func Decorate(toast *Toast) string {
	if toast.Level == LevelError {
		return "❌ " + toast.Message
	}

	return toast.Message
}
