// Package debounce coalesces bursts of events into a single trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn with the most recent value once no new value has been
// triggered for the configured wait. It is safe for concurrent use.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	running sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	latest  T
	seq     uint64
	stopped bool
}

func New[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Trigger records value and restarts the quiet period. It is a no-op after
// Stop.
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.latest = value
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(seq) })
}

// fire runs fn unless a later Trigger, Flush or Stop superseded seq.
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || seq != d.seq {
		d.mu.Unlock()
		return
	}
	value := d.latest
	d.pending = false
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(value)
}

// Flush runs any pending call immediately on the caller's goroutine.
// It reports whether a call was made.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	value := d.latest
	d.pending = false
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(value)
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending && !d.stopped
}

// Stop cancels pending work and waits for a call already running to
// return. Later triggers are ignored. fn must not call Stop.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.running.Wait()
}
