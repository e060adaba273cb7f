package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/inovacc/kintai/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	statusJSON bool
	statusYAML bool
)

// statusView is the --json output of `kintai status`.
type statusView struct {
	model.AttendanceRecord `yaml:",inline"`

	State string `json:"state" yaml:"state"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the attendance record of today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), sessionOptions{})
		if err != nil {
			return err
		}

		defer func() { _ = e.Close() }()

		rec := e.session.Record()
		view := statusView{AttendanceRecord: rec, State: rec.State().String()}

		switch {
		case statusJSON:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(view)
		case statusYAML:
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer func() { _ = enc.Close() }()

			return enc.Encode(view)
		}

		_, _ = fmt.Fprint(cmd.OutOrStdout(), formatStatus(rec))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the record as JSON")
	statusCmd.Flags().BoolVar(&statusYAML, "yaml", false, "Print the record as YAML")
	statusCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}
