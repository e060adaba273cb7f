// Package store provides the durable key-value storage behind the day's
// attendance record.
//
// The package defines the [Backend] interface, a minimal key-value contract
// implemented by BoltDB (default), SQLite and an in-memory map. On top of it
// [Repository] keeps exactly one record under a fixed key and discards it
// when the calendar date rolls over:
//
//	backend, err := store.Open(cfg.Storage)
//	repo := store.NewRepository(backend, clock.System{})
//	rec, err := repo.Load(ctx)
//
// Writes are always whole-record writes; there are no field-level updates.
package store
