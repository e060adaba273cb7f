package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/inovacc/kintai/internal/application"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/params"
)

// ErrNotFound is returned by Backend.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Backend is a durable key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open creates the backend selected by cfg. An empty path puts the database
// file inside the application directory.
func Open(cfg model.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case params.BackendMemory:
		return NewMemory(), nil
	case "", params.BackendBolt:
		path, err := resolvePath(cfg.Path, params.BoltFileName)
		if err != nil {
			return nil, err
		}

		return NewBolt(path)
	case params.BackendSQLite:
		path, err := resolvePath(cfg.Path, params.SQLiteFileName)
		if err != nil {
			return nil, err
		}

		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func resolvePath(path, fileName string) (string, error) {
	if path != "" {
		return path, nil
	}

	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, fileName), nil
}
