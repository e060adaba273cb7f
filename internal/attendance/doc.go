// Package attendance implements the daily clock-in / clock-out state machine.
//
// A [Session] owns the single live [model.AttendanceRecord]. Each transition
// validates the current state synchronously, submits the action remotely and
// only then mutates, persists and re-renders the record:
//
//	NotClockedIn --ClockIn--> ClockedIn --ClockOut--> ClockedOut
//
// Transitions never panic or return bare errors; they return a [Result]
// carrying either the new record or a classified [*Error] with a localized
// message. Task completion is a confirmed one-shot notification that leaves
// the record untouched.
//
// Input from any UI arrives as typed [Event] values on a channel consumed by
// [Session.Run], one event at a time.
package attendance
