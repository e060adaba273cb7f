package model

import (
	"errors"
	"fmt"
)

// Placeholders shown when a value of the record is absent.
const (
	TimePlaceholder     = "--:--"
	DurationPlaceholder = "--"
)

var (
	ErrClockOutWithoutClockIn = errors.New("clock-out recorded without clock-in")
	ErrWorkingHoursMismatch   = errors.New("working hours must be set exactly when both times are set")
)

// State is the position of a record in the daily state machine.
type State int

const (
	StateNotClockedIn State = iota
	StateClockedIn
	StateClockedOut
)

func (s State) String() string {
	switch s {
	case StateNotClockedIn:
		return "not clocked in"
	case StateClockedIn:
		return "clocked in"
	case StateClockedOut:
		return "clocked out"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// WorkingHours is the elapsed time between clock-in and clock-out.
type WorkingHours struct {
	Hours   int `json:"hours" yaml:"hours"`
	Minutes int `json:"minutes" yaml:"minutes"`
}

// TotalMinutes returns the duration expressed in minutes.
func (w WorkingHours) TotalMinutes() int {
	return w.Hours*60 + w.Minutes
}

// String renders the duration the way the attendance sheet displays it.
func (w WorkingHours) String() string {
	return fmt.Sprintf("%d時間%d分", w.Hours, w.Minutes)
}

// AttendanceRecord is the record of one calendar day.
type AttendanceRecord struct {
	// Date is the calendar date in YYYY/MM/DD form
	Date string `json:"date" yaml:"date"`

	// ClockIn is the HH:mm time of the clock-in
	ClockIn *string `json:"clockIn" yaml:"clockIn"`

	// ClockOut is the HH:mm time of the clock-out
	ClockOut *string `json:"clockOut" yaml:"clockOut"`

	// WorkingHours is derived from ClockIn and ClockOut
	WorkingHours *WorkingHours `json:"workingHours" yaml:"workingHours"`
}

// NewRecord returns an empty record for the given date.
func NewRecord(date string) AttendanceRecord {
	return AttendanceRecord{Date: date}
}

// State derives the state machine position from the recorded times.
func (r AttendanceRecord) State() State {
	switch {
	case r.ClockOut != nil:
		return StateClockedOut
	case r.ClockIn != nil:
		return StateClockedIn
	default:
		return StateNotClockedIn
	}
}

// Validate checks the record invariants.
func (r AttendanceRecord) Validate() error {
	if r.ClockOut != nil && r.ClockIn == nil {
		return ErrClockOutWithoutClockIn
	}

	both := r.ClockIn != nil && r.ClockOut != nil
	if both != (r.WorkingHours != nil) {
		return ErrWorkingHoursMismatch
	}

	return nil
}

// Clone returns a deep copy so callers cannot alias the live record.
func (r AttendanceRecord) Clone() AttendanceRecord {
	out := AttendanceRecord{Date: r.Date}

	if r.ClockIn != nil {
		v := *r.ClockIn
		out.ClockIn = &v
	}

	if r.ClockOut != nil {
		v := *r.ClockOut
		out.ClockOut = &v
	}

	if r.WorkingHours != nil {
		v := *r.WorkingHours
		out.WorkingHours = &v
	}

	return out
}

// Display holds the strings shown for a record, placeholders included.
type Display struct {
	ClockIn      string
	ClockOut     string
	WorkingHours string
}

// Display returns the record values with placeholders for absent ones.
func (r AttendanceRecord) Display() Display {
	d := Display{
		ClockIn:      TimePlaceholder,
		ClockOut:     TimePlaceholder,
		WorkingHours: DurationPlaceholder,
	}

	if r.ClockIn != nil {
		d.ClockIn = *r.ClockIn
	}

	if r.ClockOut != nil {
		d.ClockOut = *r.ClockOut
	}

	if r.WorkingHours != nil {
		d.WorkingHours = r.WorkingHours.String()
	}

	return d
}
