package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/params"
)

// Repository persists the record of today under one fixed key.
type Repository struct {
	backend Backend
	clock   clock.Clock
	key     string
	logger  *slog.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) RepositoryOption {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// NewRepository binds a backend to the record of today.
func NewRepository(backend Backend, clk clock.Clock, opts ...RepositoryOption) *Repository {
	r := &Repository{
		backend: backend,
		clock:   clk,
		key:     params.StorageKeyToday,
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Load returns the stored record when it belongs to today. A record of
// another day, or one that is missing or unreadable, is replaced by a fresh
// empty record for today, which is persisted before returning.
func (r *Repository) Load(ctx context.Context) (model.AttendanceRecord, error) {
	today := clock.TodayDate(r.clock)

	data, err := r.backend.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return r.reset(ctx, today)
	}

	if err != nil {
		return model.AttendanceRecord{}, fmt.Errorf("loading record: %w", err)
	}

	var rec model.AttendanceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("discarding unreadable record", "key", r.key, "error", err)
		return r.reset(ctx, today)
	}

	if rec.Date != today {
		r.logger.Info("date rolled over, starting a new record", "stored", rec.Date, "today", today)
		return r.reset(ctx, today)
	}

	if err := rec.Validate(); err != nil {
		r.logger.Warn("discarding inconsistent record", "key", r.key, "error", err)
		return r.reset(ctx, today)
	}

	return rec, nil
}

// Save overwrites the stored record with rec.
func (r *Repository) Save(ctx context.Context, rec model.AttendanceRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("refusing to save record: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if err := r.backend.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("saving record: %w", err)
	}

	return nil
}

func (r *Repository) reset(ctx context.Context, today string) (model.AttendanceRecord, error) {
	rec := model.NewRecord(today)

	if err := r.Save(ctx, rec); err != nil {
		return model.AttendanceRecord{}, err
	}

	return rec, nil
}
