package cli

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/notify"
)

// MsgSender delivers messages to a running program; *tea.Program implements it.
type MsgSender interface {
	Send(msg tea.Msg)
}

// programRef is bound once the program exists. Messages sent before that
// are dropped; the dashboard starts from the record it was built with.
type programRef struct {
	mu      sync.RWMutex
	program MsgSender
}

// Bind sets the program receiving messages.
func (r *programRef) Bind(p MsgSender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
}

func (r *programRef) send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()

	if p != nil {
		p.Send(msg)
	}
}

// ProgramUI forwards a session's display calls to the dashboard.
type ProgramUI struct {
	programRef
}

// NewProgramUI creates the session UI for a dashboard program; p may be nil
// and bound later.
func NewProgramUI(p MsgSender) *ProgramUI {
	u := &ProgramUI{}
	u.Bind(p)

	return u
}

func (u *ProgramUI) Busy() func() {
	u.send(BusyMsg{Busy: true})

	return func() { u.send(BusyMsg{Busy: false}) }
}

func (u *ProgramUI) Render(rec model.AttendanceRecord) {
	u.send(RecordMsg{Record: rec.Clone()})
}

// ToastSender shows toasts on the dashboard.
type ToastSender struct {
	programRef
}

// NewToastSender creates a notify.Sender for a dashboard program; p may be
// nil and bound later.
func NewToastSender(p MsgSender) *ToastSender {
	s := &ToastSender{}
	s.Bind(p)

	return s
}

func (s *ToastSender) Name() string { return "dashboard" }

func (s *ToastSender) Send(_ context.Context, toast *notify.Toast) error {
	s.send(ToastMsg{Toast: toast})
	return nil
}
