package directory

import (
	"context"
	"sync"
	"time"
)

// Debouncer delays a call until no new call has arrived for its duration.
// Rapid successive calls reset the timer and only the last one runs.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	inflight *tracker
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration, inflight: &tracker{}}
}

func newTrackedDebouncer(duration time.Duration, t *tracker) *Debouncer {
	return &Debouncer{duration: duration, inflight: t}
}

// Debounce schedules fn, replacing a pending call. It reports whether a
// pending call was replaced.
func (d *Debouncer) Debounce(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	replaced := d.timer != nil && d.timer.Stop()
	if !replaced {
		d.inflight.add()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		defer d.inflight.done()
		fn()
	})
	return replaced
}

// Cancel drops any pending call and reports whether there was one
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	if stopped {
		d.inflight.done()
	}
	d.timer = nil
	return stopped
}

// Wait blocks until no call is pending or running
func (d *Debouncer) Wait(ctx context.Context) error {
	return d.inflight.wait(ctx)
}

// tracker counts outstanding work and lets callers wait for it to drain
type tracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *tracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
}

func (t *tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
}

func (t *tracker) wait(ctx context.Context) error {
	t.mu.Lock()
	if t.n == 0 {
		t.mu.Unlock()
		return nil
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
