package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/inovacc/kintai/internal/config"
	"github.com/inovacc/kintai/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configJSON  bool
	configYAML  bool
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after applying the config file and the KINTAI_*
environment variables on top of the built-in defaults.

Environment variables:
  KINTAI_ENDPOINT_URL     endpoint URL receiving the punches
  KINTAI_USER_ID          user id sent with every action
  KINTAI_USER_NAME        display name sent with every action
  KINTAI_APP_URL          app URL sent with a task completion
  KINTAI_TIMEOUT          per-attempt timeout (e.g. 10s)
  KINTAI_RETRIES          attempts per submission
  KINTAI_RETRY_DELAY      backoff base between attempts (e.g. 1s)
  KINTAI_STORAGE_BACKEND  bolt, sqlite or memory
  KINTAI_STORAGE_PATH     database file
  KINTAI_HOME             application directory (config, database, pid file)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		switch {
		case configJSON:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(cfg)
		case configYAML:
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err
		}

		_, _ = fmt.Fprint(cmd.OutOrStdout(), formatConfig(cfg))

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if err := config.Write(path, model.DefaultConfig()); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Set [endpoint] url before clocking in.")

		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configCmd.Flags().BoolVar(&configJSON, "json", false, "Print the configuration as JSON")
	configCmd.Flags().BoolVar(&configYAML, "yaml", false, "Print the configuration as YAML")
	configCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}

	return config.DefaultPath()
}

func formatConfig(cfg model.Config) string {
	endpoint := cfg.Endpoint.URL
	if endpoint == "" {
		endpoint = "(not configured)"
	}

	storagePath := cfg.Storage.Path
	if storagePath == "" {
		storagePath = "(application directory)"
	}

	return fmt.Sprintf(`[endpoint]
url         = %s

[user]
id          = %s
name        = %s
app_url     = %s

[transport]
timeout     = %s
retries     = %d
retry_delay = %s

[storage]
backend     = %s
path        = %s
`,
		endpoint,
		cfg.User.ID, cfg.User.Name, cfg.User.AppURL,
		cfg.Transport.Timeout, cfg.Transport.Retries, cfg.Transport.RetryDelay,
		cfg.Storage.Backend, storagePath,
	)
}
