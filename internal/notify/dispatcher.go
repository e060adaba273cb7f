package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher routes toasts to registered senders, in registration order.
type Dispatcher struct {
	senders []Sender
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewDispatcher creates a new dispatcher. A nil logger discards delivery errors.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Dispatcher{
		senders: make([]Sender, 0),
		logger:  logger,
	}
}

// Register adds a sender to the dispatcher.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
}

// Unregister removes a sender from the dispatcher by name.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	filtered := make([]Sender, 0, len(d.senders))
	for _, s := range d.senders {
		if s.Name() != name {
			filtered = append(filtered, s)
		}
	}
	d.senders = filtered
}

// Dispatch sends a toast to all registered senders.
func (d *Dispatcher) Dispatch(ctx context.Context, toast *Toast) {
	d.mu.RLock()
	senders := make([]Sender, len(d.senders))
	copy(senders, d.senders)
	d.mu.RUnlock()

	for _, sender := range senders {
		d.sendWithRecover(ctx, sender, toast)
	}
}

// sendWithRecover sends a toast and recovers from panics.
func (d *Dispatcher) sendWithRecover(ctx context.Context, sender Sender, toast *Toast) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notify: panic in sender", "sender", sender.Name(), "panic", r)
		}
	}()

	if err := sender.Send(ctx, toast); err != nil {
		d.logger.Warn("notify: error sending toast", "sender", sender.Name(), "error", err)
	}
}

// HasSenders returns true if any senders are registered.
func (d *Dispatcher) HasSenders() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.senders) > 0
}
