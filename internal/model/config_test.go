package model

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint.URL != "" {
		t.Errorf("Endpoint.URL = %q, want empty", cfg.Endpoint.URL)
	}

	if cfg.Transport.Timeout != 10*time.Second {
		t.Errorf("Transport.Timeout = %v, want 10s", cfg.Transport.Timeout)
	}

	if cfg.Transport.Retries != 3 {
		t.Errorf("Transport.Retries = %d, want 3", cfg.Transport.Retries)
	}

	if cfg.Transport.RetryDelay != time.Second {
		t.Errorf("Transport.RetryDelay = %v, want 1s", cfg.Transport.RetryDelay)
	}

	if cfg.Storage.Backend != "bolt" {
		t.Errorf("Storage.Backend = %q, want bolt", cfg.Storage.Backend)
	}

	if cfg.User.ID == "" || cfg.User.Name == "" {
		t.Errorf("User = %+v, want non-empty defaults", cfg.User)
	}
}
