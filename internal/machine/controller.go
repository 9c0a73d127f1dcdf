package machine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/traffic-light/internal/sched"
)

// ErrHardware wraps output-sink failures. A hardware failure halts the
// controller: after a failed write the lamp state is unknown, so we
// never keep cycling on top of it.
var ErrHardware = errors.New("machine: hardware failure")

// Sink realizes a lamp pattern on the physical outputs. Apply must set
// all three lamps with no externally observable half-applied pattern.
type Sink interface {
	Apply(Pattern) error
}

// Trigger delivers debounced rising edges from an external source.
// Arm registers a callback for the next qualifying edge; the
// registration is one-shot and must be re-armed for the next edge.
// Edges arriving while not armed are dropped, not queued.
type Trigger interface {
	Arm(func())
	Disarm()
}

// Options configures optional Controller collaborators.
type Options struct {
	// Trigger is required when the table has a wait-for-trigger state.
	Trigger Trigger
	// Notify, if set, is called after every completed transition,
	// including the initial entry on Start (with From == ""). It runs
	// on the scheduler's goroutine and must not block or call back
	// into the Controller.
	Notify func(Transition)
	// Now defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

// Controller drives a Table: on entering a state it applies the
// state's outputs and arms its dwell, and advances when the dwell
// completes (timer fired, or trigger edge for the wait state).
//
// Controller is the sole owner of the current state. Only one dwell
// source is ever armed at a time: timed states register no trigger
// callback and the wait state arms no timer, so the two sources can
// never race each other into a double transition.
type Controller struct {
	table   *Table
	sink    Sink
	timers  sched.Scheduler
	trigger Trigger
	notify  func(Transition)
	now     func() time.Time

	mu      sync.Mutex
	current State
	running bool
	handle  sched.Handle
	fatal   chan error
}

// NewController wires a Controller. It fails fast if the table needs a
// trigger source and none was supplied.
func NewController(table *Table, sink Sink, timers sched.Scheduler, opts Options) (*Controller, error) {
	if table.NeedsTrigger() && opts.Trigger == nil {
		return nil, fmt.Errorf("%w: table has a wait-for-trigger state but no trigger source", ErrInvalidTable)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		table:   table,
		sink:    sink,
		timers:  timers,
		trigger: opts.Trigger,
		notify:  opts.Notify,
		now:     now,
		fatal:   make(chan error, 1),
	}, nil
}

// Start enters the table's initial state: outputs applied, dwell
// armed. It returns an ErrHardware-wrapped error if the initial
// pattern cannot be applied.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("machine: controller already started")
	}
	c.running = true
	tr, err := c.enterLocked(c.table.Initial())
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if c.notify != nil {
		c.notify(tr)
	}
	return nil
}

// Stop halts the controller: the pending timer is cancelled and the
// trigger disarmed before the safe final pattern (all lamps off) is
// applied. Idempotent.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.timers.Cancel(c.handle)
	if c.trigger != nil {
		c.trigger.Disarm()
	}
	c.mu.Unlock()

	if err := c.sink.Apply(Pattern{}); err != nil {
		return fmt.Errorf("%w: clear outputs on stop: %v", ErrHardware, err)
	}
	return nil
}

// Current returns the current state, or "" before Start.
func (c *Controller) Current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Fatal reports an asynchronous hardware failure. At most one error is
// ever delivered; the controller has already halted when it arrives.
func (c *Controller) Fatal() <-chan error {
	return c.fatal
}

// onDwellComplete is the sole transition path. It is the callback for
// both the timer and the trigger; which one is armed depends only on
// the current state's dwell.
func (c *Controller) onDwellComplete() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	tr, err := c.enterLocked(c.table.Next(c.current))
	c.mu.Unlock()

	if err != nil {
		select {
		case c.fatal <- err:
		default:
		}
		return
	}
	if c.notify != nil {
		c.notify(tr)
	}
}

// enterLocked applies the target state's outputs and arms its dwell.
// On a sink failure the controller stops with the state unchanged; the
// caller reports the error. Must be called with c.mu held.
func (c *Controller) enterLocked(next State) (Transition, error) {
	outputs := c.table.Outputs(next)
	if err := c.sink.Apply(outputs); err != nil {
		c.running = false
		c.timers.Cancel(c.handle)
		if c.trigger != nil {
			c.trigger.Disarm()
		}
		return Transition{}, fmt.Errorf("%w: apply outputs for %s: %v", ErrHardware, next, err)
	}

	from := c.current
	c.current = next

	dwell := c.table.Dwell(next)
	if dwell.WaitForTrigger {
		c.trigger.Arm(c.onDwellComplete)
	} else {
		c.handle = c.timers.Arm(dwell.Duration, c.onDwellComplete)
	}

	return Transition{
		Timestamp: c.now(),
		From:      from,
		To:        next,
		Outputs:   outputs,
	}, nil
}
