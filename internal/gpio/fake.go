package gpio

import "github.com/sweeney/traffic-light/internal/machine"

// FakeSink is a test double that records every applied pattern.
type FakeSink struct {
	// Patterns contains every pattern passed to Apply, in order.
	Patterns []machine.Pattern

	// ApplyError, if set, will be returned by Apply.
	ApplyError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// Apply records the pattern.
func (f *FakeSink) Apply(p machine.Pattern) error {
	if f.ApplyError != nil {
		return f.ApplyError
	}
	f.Patterns = append(f.Patterns, p)
	return nil
}

// Last returns the most recently applied pattern.
func (f *FakeSink) Last() (machine.Pattern, bool) {
	if len(f.Patterns) == 0 {
		return machine.Pattern{}, false
	}
	return f.Patterns[len(f.Patterns)-1], true
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded state.
func (f *FakeSink) Reset() {
	f.Patterns = nil
	f.ApplyError = nil
	f.Closed = false
}

// FakeTrigger simulates the button with the same edge semantics as the
// real watcher: a Press while armed and released-since-last-delivery
// fires the callback once; a second Press without a Release in between
// does nothing. Not safe for concurrent use.
type FakeTrigger struct {
	// ArmCount counts Arm calls.
	ArmCount int

	armed   func()
	pressed bool
	ready   bool
}

// NewFakeTrigger creates a FakeTrigger with the button released.
func NewFakeTrigger() *FakeTrigger {
	return &FakeTrigger{ready: true}
}

// Arm registers fn for the next simulated rising edge.
func (f *FakeTrigger) Arm(fn func()) {
	f.armed = fn
	f.ArmCount++
}

// Disarm drops any registered callback.
func (f *FakeTrigger) Disarm() {
	f.armed = nil
}

// IsArmed reports whether a callback is registered.
func (f *FakeTrigger) IsArmed() bool {
	return f.armed != nil
}

// Press simulates a rising edge. Returns whether a callback fired.
func (f *FakeTrigger) Press() bool {
	if f.pressed {
		return false
	}
	f.pressed = true
	if f.armed == nil || !f.ready {
		return false
	}
	fn := f.armed
	f.armed = nil
	f.ready = false
	fn()
	return true
}

// Release simulates the falling edge that re-qualifies the input.
func (f *FakeTrigger) Release() {
	f.pressed = false
	f.ready = true
}
