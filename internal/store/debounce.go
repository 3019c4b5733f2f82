package store

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs the most recently triggered action once no new trigger has arrived
// for the quiescence window. Each Trigger cancels the previous pending action.
//
// A timer-fired action runs with a background context bounded by timeout; its error is
// dropped, so the action reports failures itself.
type Debouncer struct {
	window  time.Duration
	timeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func(context.Context) error
	gen     uint64
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window < 0 {
		window = 0
	}
	return &Debouncer{window: window, timeout: backgroundWriteTimeout}
}

// Trigger (re)arms the timer with fn as the action to run.
func (d *Debouncer) Trigger(fn func(context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_ = fn(ctx)
}

// Flush runs the pending action now, on the caller's goroutine, and returns its error.
// ran is false when nothing was pending.
func (d *Debouncer) Flush(ctx context.Context) (ran bool, err error) {
	d.mu.Lock()
	fn := d.pending
	d.cancelLocked()
	d.mu.Unlock()

	if fn == nil {
		return false, nil
	}
	return true, fn(ctx)
}

// Stop drops the pending action without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer) cancelLocked() {
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
