package cmd

import (
	"context"

	"github.com/inovacc/kintai/internal/attendance"
	"github.com/spf13/cobra"
)

var inCmd = &cobra.Command{
	Use:     "in",
	Aliases: []string{"clock-in"},
	Short:   "Record the start of the working day",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, nil, func(ctx context.Context, s *attendance.Session) attendance.Result {
			return s.ClockIn(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(inCmd)
}
