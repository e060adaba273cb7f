// Package clock produces the date and time strings kintai records and
// computes the working duration between two times of day.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/kintai/internal/model"
)

const (
	dateLayout      = "2006/01/02"
	timeLayout      = "15:04"
	timestampLayout = dateLayout + " " + timeLayout
)

// ErrInvalidTime reports a malformed time of day or an end before its start.
var ErrInvalidTime = errors.New("invalid time")

// Clock is the source of the current time.
type Clock interface {
	Now() time.Time
}

// System reads the local wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Timestamp formats t as YYYY/MM/DD HH:mm.
func Timestamp(t time.Time) string { return t.Format(timestampLayout) }

// Date formats t as YYYY/MM/DD.
func Date(t time.Time) string { return t.Format(dateLayout) }

// TimeOfDay formats t as HH:mm.
func TimeOfDay(t time.Time) string { return t.Format(timeLayout) }

// NowTimestamp is the payload timestamp for the current minute.
func NowTimestamp(c Clock) string { return Timestamp(c.Now()) }

// TodayDate is the record key for the current day.
func TodayDate(c Clock) string { return Date(c.Now()) }

// ParseTimeOfDay converts HH:mm into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return h*60 + m, nil
}

// ComputeDuration returns the whole hours and remaining minutes between two
// HH:mm times of the same day. An end before start is rejected; shifts never
// cross midnight.
func ComputeDuration(start, end string) (model.WorkingHours, error) {
	from, err := ParseTimeOfDay(start)
	if err != nil {
		return model.WorkingHours{}, err
	}

	to, err := ParseTimeOfDay(end)
	if err != nil {
		return model.WorkingHours{}, err
	}

	diff := to - from
	if diff < 0 {
		return model.WorkingHours{}, fmt.Errorf("%w: %s is before %s", ErrInvalidTime, end, start)
	}

	return model.WorkingHours{Hours: diff / 60, Minutes: diff % 60}, nil
}
