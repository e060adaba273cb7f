// Package config resolves the effective configuration from the compiled
// defaults, an optional INI file and KINTAI_* environment variables, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/kintai/internal/application"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/params"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Environment variables overriding the file.
const (
	EnvEndpointURL    = "KINTAI_ENDPOINT_URL"
	EnvUserID         = "KINTAI_USER_ID"
	EnvUserName       = "KINTAI_USER_NAME"
	EnvAppURL         = "KINTAI_APP_URL"
	EnvTimeout        = "KINTAI_TIMEOUT"
	EnvRetries        = "KINTAI_RETRIES"
	EnvRetryDelay     = "KINTAI_RETRY_DELAY"
	EnvStorageBackend = "KINTAI_STORAGE_BACKEND"
	EnvStoragePath    = "KINTAI_STORAGE_PATH"
)

// DefaultPath is the config file inside the application directory.
func DefaultPath() (string, error) {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, params.ConfigFileName), nil
}

// LoadEnvFile exports the KEY=value lines of a dotenv file into the process
// environment. Variables already set are left alone.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}

// Load returns the effective configuration. An empty path means DefaultPath;
// a missing file leaves the defaults in place.
func Load(path string) (model.Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (model.Config, error) {
	cfg := model.DefaultConfig()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}

		path = p
	}

	if err := readFile(path, &cfg); err != nil {
		return cfg, err
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func readFile(path string, cfg *model.Config) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := f.MapTo(cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *model.Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setDuration := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}

		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		*dst = d

		return nil
	}

	setString(EnvEndpointURL, &cfg.Endpoint.URL)
	setString(EnvUserID, &cfg.User.ID)
	setString(EnvUserName, &cfg.User.Name)
	setString(EnvAppURL, &cfg.User.AppURL)
	setString(EnvStorageBackend, &cfg.Storage.Backend)
	setString(EnvStoragePath, &cfg.Storage.Path)

	if err := setDuration(EnvTimeout, &cfg.Transport.Timeout); err != nil {
		return err
	}

	if err := setDuration(EnvRetryDelay, &cfg.Transport.RetryDelay); err != nil {
		return err
	}

	if v := strings.TrimSpace(getenv(EnvRetries)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRetries, err)
		}

		cfg.Transport.Retries = n
	}

	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)

	return nil
}

// Validate checks the ranges of every setting. An empty endpoint is valid:
// submissions then fail with a not-configured error.
func Validate(cfg model.Config) error {
	var errs []error

	if cfg.Endpoint.URL != "" {
		u, err := url.Parse(cfg.Endpoint.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("endpoint.url must be an http(s) URL, got %q", cfg.Endpoint.URL))
		}
	}

	if cfg.User.ID == "" {
		errs = append(errs, errors.New("user.id is required"))
	}

	if cfg.Transport.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("transport.timeout must be positive, got %s", cfg.Transport.Timeout))
	}

	if cfg.Transport.Retries < 1 {
		errs = append(errs, fmt.Errorf("transport.retries must be at least 1, got %d", cfg.Transport.Retries))
	}

	if cfg.Transport.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("transport.retry_delay must not be negative, got %s", cfg.Transport.RetryDelay))
	}

	switch cfg.Storage.Backend {
	case params.BackendBolt, params.BackendSQLite, params.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be bolt, sqlite or memory, got %q", cfg.Storage.Backend))
	}

	return errors.Join(errs...)
}

// Write saves cfg as an INI file at path.
func Write(path string, cfg model.Config) error {
	f := ini.Empty()
	if err := f.ReflectFrom(&cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
