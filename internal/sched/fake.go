package sched

import "time"

// Arming records one Arm call for test assertions.
type Arming struct {
	Duration time.Duration
	Handle   Handle
}

// Fake is a Scheduler test double. Nothing fires on its own; tests
// call Fire to run the pending callback synchronously. Not safe for
// concurrent use.
type Fake struct {
	// Armed records every Arm call in order.
	Armed []Arming

	epoch   Handle
	pending func()
	live    Handle
}

// NewFake creates an empty fake scheduler.
func NewFake() *Fake {
	return &Fake{}
}

// Arm records the call and replaces any pending callback.
func (f *Fake) Arm(d time.Duration, fn func()) Handle {
	f.epoch++
	f.pending = fn
	f.live = f.epoch
	f.Armed = append(f.Armed, Arming{Duration: d, Handle: f.epoch})
	return f.epoch
}

// Cancel clears the pending callback if h is the live slot.
func (f *Fake) Cancel(h Handle) {
	if h == f.live && f.pending != nil {
		f.pending = nil
	}
}

// Fire runs the pending callback, if any, and reports whether one ran.
// The slot is cleared before the callback runs so it can re-arm.
func (f *Fake) Fire() bool {
	fn := f.pending
	if fn == nil {
		return false
	}
	f.pending = nil
	fn()
	return true
}

// PendingDuration returns the duration of the pending slot.
func (f *Fake) PendingDuration() (time.Duration, bool) {
	if f.pending == nil {
		return 0, false
	}
	return f.Armed[len(f.Armed)-1].Duration, true
}

// Reset clears all recorded state.
func (f *Fake) Reset() {
	f.Armed = nil
	f.pending = nil
	f.epoch = 0
	f.live = 0
}
