package attendance

import "context"

// Event is an input delivered to a running session.
type Event interface {
	event()
}

// ClockInRequested asks for a clock-in.
type ClockInRequested struct{}

// ClockOutRequested asks for a clock-out.
type ClockOutRequested struct{}

// CompleteTaskRequested asks for a task completion report.
type CompleteTaskRequested struct{}

// ConnectivityChanged reports the device going online or offline.
type ConnectivityChanged struct {
	Online bool
}

func (ClockInRequested) event()      {}
func (ClockOutRequested) event()     {}
func (CompleteTaskRequested) event() {}
func (ConnectivityChanged) event()   {}

// Handle applies one event. Transition events yield a Result; connectivity
// events do not.
func (s *Session) Handle(ctx context.Context, ev Event) (Result, bool) {
	switch e := ev.(type) {
	case ClockInRequested:
		return s.ClockIn(ctx), true
	case ClockOutRequested:
		return s.ClockOut(ctx), true
	case CompleteTaskRequested:
		return s.CompleteTask(ctx), true
	case ConnectivityChanged:
		s.SetOnline(ctx, e.Online)
	default:
		s.logger.Warn("ignoring unknown event", "event", ev)
	}

	return Result{}, false
}

// Run consumes events one at a time until ctx is done or events is closed.
// A second request arriving while one is pending waits its turn and is
// validated against the updated record. Results are sent to results when it
// is non-nil.
func (s *Session) Run(ctx context.Context, events <-chan Event, results chan<- Result) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			res, produced := s.Handle(ctx, ev)
			if !produced || results == nil {
				continue
			}

			select {
			case results <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
