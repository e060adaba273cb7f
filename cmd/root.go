package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/inovacc/kintai/internal/application"
	"github.com/inovacc/kintai/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errReported marks a failure whose message was already shown to the user.
var errReported = errors.New("failure already reported")

var (
	configPath string
	envFile    string
	logFormat  string
	verbose    bool

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:     application.AppName,
	Short:   "Clock in and out from the terminal",
	Version: application.Version,
	Long: `kintai records when the working day starts and ends and relays every
punch to a spreadsheet-backed HTTP endpoint. The record of the current day is
kept locally and reset automatically on the next day.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), logFormat, verbose)
		if err != nil {
			return err
		}

		logger = l
		slog.SetDefault(l)

		if envFile != "" {
			return config.LoadEnvFile(envFile)
		}

		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if !errors.Is(err, errReported) {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(1)
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default: <user config dir>/kintai/config.ini)")
	flags.StringVar(&envFile, "env-file", "", "Load KINTAI_* variables from a dotenv file")
	flags.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
}
