// Package debounce coalesces bursts of triggers into one call that runs
// after the input has been quiet for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the quiescence window used for food search input.
const DefaultInterval = 300 * time.Millisecond

// Debouncer runs only the last function passed to Trigger, once the
// interval has elapsed without another Trigger.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	closed   bool
}

// New returns a Debouncer. interval <= 0 selects DefaultInterval.
func New(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer{interval: interval}
}

// Trigger schedules fn and drops any call still pending.
// It is a no-op after Stop.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending call and refuses further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
