package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketAttendance = "attendance" // key: storage key -> AttendanceRecord JSON

// Bolt is a Backend over a single BoltDB bucket.
type Bolt struct {
	storage *bbolt.DB
}

// NewBolt opens (or creates) the Bolt database at path. Opening fails after
// one second when another process holds the file lock.
func NewBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("database %s is locked by another process: %w", path, err)
		}

		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketAttendance))
		return err
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance}, nil
}

func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketAttendance)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}

		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)

		return nil
	})

	return out, err
}

func (b *Bolt) Put(_ context.Context, key string, value []byte) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketAttendance)).Put([]byte(key), value)
	})
}

func (b *Bolt) Close() error {
	return b.storage.Close()
}
