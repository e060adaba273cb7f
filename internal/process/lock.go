package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AlreadyRunningError reports another live instance holding the pid file.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("kintai is already running (pid %d)", e.PID)
}

// LookupFunc reports whether pid is a live process named name.
type LookupFunc func(pid int, name string) bool

// Lock is a held pid file.
type Lock struct {
	path string
	pid  int
}

// LockOption configures Acquire.
type LockOption func(*lockConfig)

type lockConfig struct {
	lookup LookupFunc
	pid    int
}

// WithLookup replaces the process table lookup, mostly for tests.
func WithLookup(fn LookupFunc) LockOption {
	return func(c *lockConfig) {
		if fn != nil {
			c.lookup = fn
		}
	}
}

// acquireAttempts bounds how often a stale file is taken over before giving up.
const acquireAttempts = 3

// Acquire claims the pid file fileName in dir for the current process. A
// stale file, left by a crashed or unrelated process, is taken over.
//
// The file appears with its content already written: the pid goes into a
// private temp file that is then hard-linked into place, and the link fails
// when another instance got there first.
func Acquire(dir, fileName, name string, opts ...LockOption) (*Lock, error) {
	cfg := &lockConfig{
		lookup: func(pid int, name string) bool { return Snapshot().Running(pid, name) },
		pid:    os.Getpid(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	path := filepath.Join(dir, fileName)

	for range acquireAttempts {
		err := publishPID(dir, path, cfg.pid)
		if err == nil {
			return &Lock{path: path, pid: cfg.pid}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		pid, err := readPID(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if pid != cfg.pid && cfg.lookup(pid, name) {
			return nil, &AlreadyRunningError{PID: pid}
		}

		if err := removeIfPID(path, pid); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to acquire %s: contended", path)
}

// publishPID creates path holding pid, failing with os.ErrExist when path
// already exists.
func publishPID(dir, path string, pid int) error {
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = tmp.WriteString(strconv.Itoa(pid))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}

	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return os.ErrExist
		}

		return fmt.Errorf("failed to write pid file: %w", err)
	}

	return nil
}

// removeIfPID deletes a stale pid file unless another instance replaced it
// since it was read.
func removeIfPID(path string, stale int) error {
	current, err := readPID(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil || current != stale {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale pid file: %w", err)
	}

	return nil
}

// Release removes the pid file if it still names this process.
func (l *Lock) Release() error {
	pid, err := readPID(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err == nil && pid != l.pid {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}

	return nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		// Garbage in the file counts as stale
		return 0, nil
	}

	return pid, nil
}
