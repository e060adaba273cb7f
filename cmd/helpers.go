package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/inovacc/kintai/internal/attendance"
	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/config"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/notify"
	"github.com/inovacc/kintai/internal/store"
	"github.com/inovacc/kintai/internal/submit"
	"github.com/inovacc/kintai/internal/transport"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}

// promptConfirm asks the user for confirmation and returns true if they confirm
func promptConfirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(response)

	return response == "y" || response == "Y"
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// sessionOptions tune the collaborators of a session.
type sessionOptions struct {
	ui           attendance.UI
	confirmer    attendance.Confirmer
	notifier     *notify.Dispatcher
	connectivity *submit.Status
}

// env is everything a command needs to run transitions.
type env struct {
	cfg     model.Config
	session *attendance.Session
	backend store.Backend
}

func (e *env) Close() error {
	return e.backend.Close()
}

func buildSubmitter(cfg model.Config, status *submit.Status) *submit.Submitter {
	client := transport.NewClient(
		transport.WithMaxAttempts(cfg.Transport.Retries),
		transport.WithTimeout(cfg.Transport.Timeout),
		transport.WithBaseDelay(cfg.Transport.RetryDelay),
		transport.WithLogger(logger),
	)

	logger.Debug("transport configured",
		"max_attempts", client.MaxAttempts(),
		"timeout", cfg.Transport.Timeout,
		"retry_delay", cfg.Transport.RetryDelay,
	)

	return submit.New(
		submit.Config{
			Endpoint: cfg.Endpoint.URL,
			UserID:   cfg.User.ID,
			Name:     cfg.User.Name,
		},
		client,
		submit.WithConnectivity(status),
		submit.WithLogger(logger),
	)
}

// openEnv loads the configuration, opens storage and starts a session on
// the record of today.
func openEnv(ctx context.Context, opts sessionOptions) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	backend, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	if opts.connectivity == nil {
		opts.connectivity = submit.NewStatus(true)
	}

	clk := clock.System{}

	deps := attendance.Deps{
		Repository:   store.NewRepository(backend, clk, store.WithLogger(logger)),
		Submitter:    buildSubmitter(cfg, opts.connectivity),
		Clock:        clk,
		UI:           opts.ui,
		Confirmer:    opts.confirmer,
		Connectivity: opts.connectivity,
		AppURL:       cfg.User.AppURL,
		Logger:       logger,
	}

	if opts.notifier != nil {
		deps.Notifier = opts.notifier
	}

	session, err := attendance.NewSession(ctx, deps)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return &env{cfg: cfg, session: session, backend: backend}, nil
}

// runTransition executes one transition with toasts printed to the command
// output.
func runTransition(cmd *cobra.Command, confirmer attendance.Confirmer, do func(context.Context, *attendance.Session) attendance.Result) error {
	dispatcher := notify.NewDispatcher(logger)
	dispatcher.Register(notify.NewConsoleSender(cmd.OutOrStdout()))

	e, err := openEnv(cmd.Context(), sessionOptions{
		confirmer: confirmer,
		notifier:  dispatcher,
	})
	if err != nil {
		return err
	}

	defer func() { _ = e.Close() }()

	res := do(cmd.Context(), e.session)
	if res.Cancelled {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	}

	if !res.OK() {
		return errReported
	}

	return nil
}

// formatStatus renders a record for the terminal.
func formatStatus(rec model.AttendanceRecord) string {
	d := rec.Display()

	var b strings.Builder
	fmt.Fprintf(&b, "日付      %s\n", rec.Date)
	fmt.Fprintf(&b, "状態      %s\n", rec.State())
	fmt.Fprintf(&b, "出勤時刻  %s\n", d.ClockIn)
	fmt.Fprintf(&b, "退勤時刻  %s\n", d.ClockOut)
	fmt.Fprintf(&b, "勤務時間  %s\n", d.WorkingHours)

	return b.String()
}
