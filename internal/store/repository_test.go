package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/inovacc/kintai/internal/clock"
	"github.com/inovacc/kintai/internal/model"
	"github.com/inovacc/kintai/internal/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var today = clock.Fixed(time.Date(2026, time.October, 14, 8, 0, 0, 0, time.Local))

func storedRecord(t *testing.T, b Backend) model.AttendanceRecord {
	t.Helper()

	data, err := b.Get(context.Background(), params.StorageKeyToday)
	require.NoError(t, err)

	var rec model.AttendanceRecord
	require.NoError(t, json.Unmarshal(data, &rec))

	return rec
}

func TestRepository_LoadEmptyStorage(t *testing.T) {
	b := NewMemory()
	repo := NewRepository(b, today)

	rec, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NewRecord("2026/10/14"), rec)
	assert.Equal(t, rec, storedRecord(t, b))
}

func TestRepository_LoadRollsOverPreviousDay(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()

	yesterday := model.AttendanceRecord{
		Date:         "2026/10/13",
		ClockIn:      strPtr("09:00"),
		ClockOut:     strPtr("18:00"),
		WorkingHours: &model.WorkingHours{Hours: 9},
	}
	data, err := json.Marshal(yesterday)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, params.StorageKeyToday, data))

	repo := NewRepository(b, today)

	rec, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026/10/14", rec.Date)
	assert.Nil(t, rec.ClockIn)
	assert.Nil(t, rec.ClockOut)
	assert.Nil(t, rec.WorkingHours)

	// The discarded record must be gone from storage too.
	assert.Equal(t, rec, storedRecord(t, b))
}

func TestRepository_LoadUnreadableRecord(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	require.NoError(t, b.Put(ctx, params.StorageKeyToday, []byte("{broken")))

	rec, err := NewRepository(b, today).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.NewRecord("2026/10/14"), rec)
}

func TestRepository_LoadInconsistentRecord(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	require.NoError(t, b.Put(ctx, params.StorageKeyToday,
		[]byte(`{"date":"2026/10/14","clockIn":null,"clockOut":"17:00","workingHours":null}`)))

	rec, err := NewRepository(b, today).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.NewRecord("2026/10/14"), rec)
}

func TestRepository_SaveAndReloadSameDay(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	repo := NewRepository(b, today)

	rec := model.AttendanceRecord{
		Date:         "2026/10/14",
		ClockIn:      strPtr("09:00"),
		ClockOut:     strPtr("17:30"),
		WorkingHours: &model.WorkingHours{Hours: 8, Minutes: 30},
	}
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRepository_SaveRejectsInvalidRecord(t *testing.T) {
	repo := NewRepository(NewMemory(), today)

	err := repo.Save(context.Background(), model.AttendanceRecord{Date: "2026/10/14", ClockOut: strPtr("17:00")})
	require.ErrorIs(t, err, model.ErrClockOutWithoutClockIn)
}

func TestRepository_WithKey(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	repo := NewRepository(b, today, WithKey("custom"))

	_, err := repo.Load(ctx)
	require.NoError(t, err)

	_, err = b.Get(ctx, "custom")
	require.NoError(t, err)

	_, err = b.Get(ctx, params.StorageKeyToday)
	require.ErrorIs(t, err, ErrNotFound)
}
