package submit

import "sync/atomic"

// Connectivity reports whether the device believes it is online. The answer
// is advisory; transport failures remain the real signal.
type Connectivity interface {
	Online() bool
}

// Status is an online flag shared between the event loop and the submitter.
// The zero value reports online.
type Status struct {
	offline atomic.Bool
}

// NewStatus returns a Status with the given initial value.
func NewStatus(online bool) *Status {
	s := &Status{}
	s.Set(online)

	return s
}

// Online implements Connectivity.
func (s *Status) Online() bool {
	return !s.offline.Load()
}

// Set records a connectivity change and reports whether the value changed.
func (s *Status) Set(online bool) bool {
	return s.offline.Swap(!online) == online
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }
