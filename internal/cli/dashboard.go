package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/kintai/internal/attendance"
	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/notify"
	"github.com/inovacc/kintai/internal/params"
)

var (
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginLeft(2)
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(10)
	valueStyle    = lipgloss.NewStyle().Bold(true)
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	onlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Messages delivered to the dashboard by the session adapters.
type (
	// BusyMsg toggles the busy overlay.
	BusyMsg struct{ Busy bool }

	// RecordMsg carries a freshly rendered record.
	RecordMsg struct{ Record model.AttendanceRecord }

	// ToastMsg shows a transient notification.
	ToastMsg struct{ Toast *notify.Toast }

	// ResultMsg ends a pending action and re-enables the controls.
	ResultMsg struct{ Result attendance.Result }

	// ConnectivityMsg updates the online indicator.
	ConnectivityMsg struct{ Online bool }
)

type tickMsg time.Time

type toastExpiredMsg struct{ seq int }

// EmitFunc hands an event to the running session.
type EmitFunc func(attendance.Event)

// DashboardModel is the interactive attendance screen.
type DashboardModel struct {
	spinner spinner.Model
	clock   clock.Clock
	emit    EmitFunc

	now    time.Time
	record model.AttendanceRecord
	online bool

	busy       bool
	locked     bool
	confirming bool

	toast      *notify.Toast
	toastSeq   int
	toastTTL   time.Duration
	quitting   bool
	pendingMsg string
}

// NewDashboardModel creates the dashboard showing rec. Events for the
// session are passed to emit.
func NewDashboardModel(clk clock.Clock, rec model.AttendanceRecord, emit EmitFunc) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return DashboardModel{
		spinner:  s,
		clock:    clk,
		emit:     emit,
		now:      clk.Now(),
		record:   rec,
		online:   true,
		toastTTL: params.ToastDuration,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// CanClockIn reports whether the clock-in control is enabled.
func (m DashboardModel) CanClockIn() bool {
	return m.controlsEnabled() && m.record.State() == model.StateNotClockedIn
}

// CanClockOut reports whether the clock-out control is enabled.
func (m DashboardModel) CanClockOut() bool {
	return m.controlsEnabled() && m.record.State() == model.StateClockedIn
}

// CanCompleteTask reports whether the task completion control is enabled.
func (m DashboardModel) CanCompleteTask() bool {
	return m.controlsEnabled()
}

func (m DashboardModel) controlsEnabled() bool {
	return !m.locked && !m.busy && !m.confirming
}

// send locks every control before the event leaves the model, so a second
// key press cannot trigger a duplicate submission.
func (m DashboardModel) send(ev attendance.Event, pending string) (DashboardModel, tea.Cmd) {
	m.locked = true
	m.pendingMsg = pending

	emit := m.emit

	return m, func() tea.Msg {
		if emit != nil {
			emit(ev)
		}

		return nil
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.now = time.Time(msg)

		return m, tick()

	case BusyMsg:
		m.busy = msg.Busy

		return m, nil

	case RecordMsg:
		m.record = msg.Record.Clone()

		return m, nil

	case ResultMsg:
		m.locked = false
		m.pendingMsg = ""
		m.record = msg.Result.Record.Clone()

		return m, nil

	case ConnectivityMsg:
		m.online = msg.Online

		return m, nil

	case ToastMsg:
		m.toast = msg.Toast
		m.toastSeq++
		seq := m.toastSeq

		return m, tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirming {
		switch key {
		case "y", "Y", "enter":
			m.confirming = false
			return m.send(attendance.CompleteTaskRequested{}, "課題完了報告を送信中...")
		case "n", "N", "esc":
			m.confirming = false
		}

		return m, nil
	}

	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "i":
		if m.CanClockIn() {
			return m.send(attendance.ClockInRequested{}, "出勤を記録中...")
		}

	case "o":
		if m.CanClockOut() {
			return m.send(attendance.ClockOutRequested{}, "退勤を記録中...")
		}

	case "c":
		if m.CanCompleteTask() {
			m.confirming = true
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("勤怠打刻"))
	b.WriteString("  ")

	if m.online {
		b.WriteString(onlineStyle.Render("● online"))
	} else {
		b.WriteString(offlineStyle.Render("● offline"))
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %s  %s\n\n", clock.Date(m.now), timeStyle.Render(m.now.Format("15:04:05")))

	d := m.record.Display()
	fmt.Fprintf(&b, "  %s%s\n", labelStyle.Render("出勤時刻"), valueStyle.Render(d.ClockIn))
	fmt.Fprintf(&b, "  %s%s\n", labelStyle.Render("退勤時刻"), valueStyle.Render(d.ClockOut))
	fmt.Fprintf(&b, "  %s%s\n\n", labelStyle.Render("勤務時間"), valueStyle.Render(d.WorkingHours))

	fmt.Fprintf(&b, "  %s   %s   %s\n",
		control("[i] 出勤", m.CanClockIn()),
		control("[o] 退勤", m.CanClockOut()),
		control("[c] 課題完了", m.CanCompleteTask()),
	)

	b.WriteString("\n")

	switch {
	case m.confirming:
		fmt.Fprintf(&b, "  %s %s\n", promptStyle.Render(attendance.ConfirmCompleteTask), helpStyle.Render("[y/N]"))
	case m.busy || m.locked:
		fmt.Fprintf(&b, "  %s %s\n", m.spinner.View(), m.pendingMsg)
	case m.toast != nil:
		fmt.Fprintf(&b, "  %s\n", notify.Style(m.toast.Level).Render(notify.Decorate(m.toast)))
	default:
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func control(label string, enabled bool) string {
	if enabled {
		return enabledStyle.Render(label)
	}

	return disabledStyle.Render(label)
}

// Record returns the record currently shown.
func (m DashboardModel) Record() model.AttendanceRecord {
	return m.record.Clone()
}

// Toast returns the notification currently shown, nil when none.
func (m DashboardModel) Toast() *notify.Toast {
	return m.toast
}
