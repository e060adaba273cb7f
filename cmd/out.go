package cmd

import (
	"context"

	"github.com/inovacc/kintai/internal/attendance"
	"github.com/spf13/cobra"
)

var outCmd = &cobra.Command{
	Use:     "out",
	Aliases: []string{"clock-out"},
	Short:   "Record the end of the working day",
	Long: `Record the end of the working day. The working hours since the clock-in
of today are computed and reported together with the punch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, nil, func(ctx context.Context, s *attendance.Session) attendance.Result {
			return s.ClockOut(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(outCmd)
}
