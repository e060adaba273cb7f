// Package cli provides the interactive attendance dashboard.
//
// The package uses [Bubbletea] for the terminal UI and [Lipgloss] for
// styling, following the Model-View-Update architecture.
//
// # Components
//
//   - DashboardModel: current time, the record of today, the clock-in,
//     clock-out and task completion controls, a busy spinner and a toast line
//   - ProgramUI: the session's display surface, forwarding to the program
//   - ToastSender: a notify.Sender showing toasts on the dashboard
//
// The model never runs a transition itself. A key press locks the controls
// and hands an attendance.Event to the session; the controls unlock when the
// matching ResultMsg arrives.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
