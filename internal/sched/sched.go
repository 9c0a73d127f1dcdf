// Package sched provides a single-slot one-shot timer scheduler.
// At most one callback is pending at a time: arming a new timer
// supersedes any pending one. The real implementation uses the Go
// runtime timer; the fake fires on demand for tests.
package sched

import (
	"sync"
	"time"
)

// Handle identifies one scheduled callback. Handles from superseded or
// fired arms are stale; Cancel on a stale handle is a no-op.
type Handle uint64

// Scheduler schedules a single one-shot callback.
type Scheduler interface {
	// Arm cancels any pending callback, then schedules fn to run once
	// after d, asynchronously relative to the caller.
	Arm(d time.Duration, fn func()) Handle

	// Cancel suppresses the callback for h if it has not fired yet.
	// Idempotent: cancelling a fired, superseded, or already-cancelled
	// handle does nothing.
	Cancel(h Handle)
}

// Timer is the real Scheduler. An epoch counter distinguishes the live
// slot from stale ones: the fired closure re-checks the epoch under
// the mutex, so a fire racing a Cancel resolves to exactly one outcome.
type Timer struct {
	mu      sync.Mutex
	epoch   Handle
	pending *time.Timer
}

// NewTimer returns an empty single-slot scheduler.
func NewTimer() *Timer {
	return &Timer{}
}

// Arm schedules fn after d, superseding any pending callback.
func (t *Timer) Arm(d time.Duration, fn func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.epoch++
	h := t.epoch

	t.pending = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.epoch != h || t.pending == nil {
			// Superseded or cancelled between expiry and here.
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()
		fn()
	})
	return h
}

// Cancel suppresses the pending callback if h is still the live slot.
func (t *Timer) Cancel(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.epoch != h || t.pending == nil {
		return
	}
	t.pending.Stop()
	t.pending = nil
}
