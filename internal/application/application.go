// Package application names kintai and locates its per-user directory.
package application

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	AppName    = "kintai"
	AppExeName = "kintai"
	Version    = "0.3.0"

	// HomeEnv relocates the application directory, e.g. for a portable install.
	HomeEnv = "KINTAI_HOME"
)

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the directory holding the config file, the
// record database and the pid file: $KINTAI_HOME when set, otherwise kintai
// under the user config directory. It is created on first use.
func GetApplicationDirectory() (string, error) {
	once.Do(func() {
		appDir, errDir = resolveDirectory(os.Getenv(HomeEnv))
	})

	return appDir, errDir
}

func resolveDirectory(home string) (string, error) {
	dir := home
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to get config directory: %w", err)
		}

		dir = filepath.Join(base, AppName)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	return dir, nil
}
