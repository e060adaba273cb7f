// Package model defines the data structures used throughout kintai.
//
// # AttendanceRecord
//
// The [AttendanceRecord] struct is the single live record of the current
// calendar day:
//
//	type AttendanceRecord struct {
//	    Date         string        // YYYY/MM/DD, the storage key for rollover
//	    ClockIn      *string       // HH:mm, set once per day
//	    ClockOut     *string       // HH:mm, only after ClockIn
//	    WorkingHours *WorkingHours // derived when both times are set
//	}
//
// The record never holds a ClockOut without a ClockIn, and WorkingHours is
// present exactly when both times are. [AttendanceRecord.Validate] checks
// those rules before every write.
//
// # Config
//
// The [Config] struct holds the deploy-time configuration: remote endpoint,
// user identity, transport bounds and storage backend.
package model
