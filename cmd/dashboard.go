package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/kintai/internal/application"
	"github.com/inovacc/kintai/internal/attendance"
	"github.com/inovacc/kintai/internal/cli"
	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/netcheck"
	"github.com/inovacc/kintai/internal/notify"
	"github.com/inovacc/kintai/internal/params"
	"github.com/inovacc/kintai/internal/process"
	"github.com/inovacc/kintai/internal/submit"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive attendance screen",
	Long: `Open the interactive attendance screen. It shows the current time and the
record of today, and offers clock-in (i), clock-out (o) and task completion (c).
Only one dashboard can run per user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(parent context.Context) error {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return err
	}

	lock, err := process.Acquire(dir, params.PIDFileName, application.AppExeName)
	if err != nil {
		return err
	}

	defer func() { _ = lock.Release() }()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	ui := cli.NewProgramUI(nil)
	toasts := cli.NewToastSender(nil)

	dispatcher := notify.NewDispatcher(logger)
	dispatcher.Register(toasts)

	status := submit.NewStatus(true)

	// The dashboard asks for confirmation itself before emitting the event.
	e, err := openEnv(ctx, sessionOptions{
		ui:           ui,
		confirmer:    attendance.ConfirmFunc(func(string) bool { return true }),
		notifier:     dispatcher,
		connectivity: status,
	})
	if err != nil {
		return err
	}

	// stop the session before the store closes underneath it
	defer func() {
		cancel()
		_ = e.Close()
	}()

	events := make(chan attendance.Event)
	results := make(chan attendance.Result)

	emit := func(ev attendance.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	m := cli.NewDashboardModel(clock.System{}, e.session.Record(), emit)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	ui.Bind(p)
	toasts.Bind(p)

	go func() {
		if err := e.session.Run(ctx, events, results); err != nil && ctx.Err() == nil {
			logger.Error("session stopped", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case res := <-results:
				p.Send(cli.ResultMsg{Result: res})
			}
		}
	}()

	if e.cfg.Endpoint.URL != "" {
		probe, err := netcheck.Dial(e.cfg.Endpoint.URL, netcheck.DefaultDialTimeout)
		if err != nil {
			logger.Warn("connectivity checks disabled", "error", err)
		} else {
			go netcheck.Watch(ctx, params.ConnectivityInterval, probe, func(online bool) {
				emit(attendance.ConnectivityChanged{Online: online})
				p.Send(cli.ConnectivityMsg{Online: online})
			})
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}
