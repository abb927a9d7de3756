// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package persist

import (
	"sync"
	"time"
)

// DefaultDelay is the persist debounce window.
const DefaultDelay = 200 * time.Millisecond

// Debouncer runs fn once after calls to Schedule stop arriving for delay.
// At most one run is pending at any time and runs never overlap.
type Debouncer struct {
	// runMu serializes calls to fn. It is taken before mu.
	runMu   sync.Mutex
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	gen     uint64
	pending bool
	closed  bool
}

// NewDebouncer returns a Debouncer. A non-positive delay uses DefaultDelay.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Schedule cancels any pending run and starts a new window.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs a pending call now, on the caller's goroutine. It waits for a
// run already in progress first.
func (d *Debouncer) Flush() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.gen++
	d.mu.Unlock()
	d.fn()
}

// Close flushes and ignores any later Schedule.
func (d *Debouncer) Close() {
	d.Flush()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
