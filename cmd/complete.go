package cmd

import (
	"context"
	"fmt"

	"github.com/inovacc/kintai/internal/attendance"
	"github.com/spf13/cobra"
)

var completeYes bool

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Report that the assigned task is finished",
	Long: `Send a task completion report, including the configured app URL.
The report does not change the attendance record of today. Without --yes the
command asks for confirmation, which requires an interactive terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmer := attendance.ConfirmFunc(func(prompt string) bool {
			if completeYes {
				return true
			}

			if !isInteractive() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Not a terminal; pass --yes to confirm.")
				return false
			}

			return promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
		})

		return runTransition(cmd, confirmer, func(ctx context.Context, s *attendance.Session) attendance.Result {
			return s.CompleteTask(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().BoolVarP(&completeYes, "yes", "y", false, "Skip confirmation prompt")
}
