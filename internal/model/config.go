package model

import (
	"time"

	"github.com/inovacc/kintai/internal/params"
)

// EndpointConfig locates the remote attendance sheet.
type EndpointConfig struct {
	// URL is the HTTP POST JSON endpoint; empty means not configured
	URL string `ini:"url" json:"url" yaml:"url"`
}

// UserConfig identifies the single user of this client.
type UserConfig struct {
	ID   string `ini:"id" json:"id" yaml:"id"`
	Name string `ini:"name" json:"name" yaml:"name"`

	// AppURL is reported together with a task completion
	AppURL string `ini:"app_url" json:"app_url" yaml:"app_url"`
}

// TransportConfig bounds the retrying transport.
type TransportConfig struct {
	Timeout    time.Duration `ini:"timeout" json:"timeout" yaml:"timeout"`
	Retries    int           `ini:"retries" json:"retries" yaml:"retries"`
	RetryDelay time.Duration `ini:"retry_delay" json:"retry_delay" yaml:"retry_delay"`
}

// StorageConfig selects where the day's record lives.
type StorageConfig struct {
	// Backend is one of bolt, sqlite or memory
	Backend string `ini:"backend" json:"backend" yaml:"backend"`

	// Path is the database file; empty means inside the application directory
	Path string `ini:"path" json:"path" yaml:"path"`
}

// Config holds the application configuration
type Config struct {
	Endpoint  EndpointConfig  `ini:"endpoint" json:"endpoint" yaml:"endpoint"`
	User      UserConfig      `ini:"user" json:"user" yaml:"user"`
	Transport TransportConfig `ini:"transport" json:"transport" yaml:"transport"`
	Storage   StorageConfig   `ini:"storage" json:"storage" yaml:"storage"`
}

// DefaultConfig returns a Config with the compiled-in defaults
func DefaultConfig() Config {
	return Config{
		User: UserConfig{
			ID:   params.DefaultUserID,
			Name: params.DefaultUserName,
		},
		Transport: TransportConfig{
			Timeout:    params.DefaultTimeout,
			Retries:    params.DefaultRetryCount,
			RetryDelay: params.DefaultRetryDelay,
		},
		Storage: StorageConfig{
			Backend: params.BackendBolt,
		},
	}
}
