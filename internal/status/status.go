// Package status provides a thread-safe status tracker for the
// traffic-light daemon. It is read by the HTTP handlers and rendered
// into the system-topic MQTT payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/traffic-light/internal/machine"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Variant     string
	RedMs       int64
	RedYellowMs int64 // 0 for the automatic variant
	GreenMs     int64
	YellowMs    int64
	DebounceMs  int64 // 0 for the automatic variant
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         machine.State
	Outputs       machine.Pattern
	Transitions   int // state changes since start, excluding the initial entry
	Cycles        int // completed returns to the initial state
	LastChange    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	initial machine.State
}

// NewTracker creates a Tracker for a controller whose cycle starts at
// the given initial state.
func NewTracker(startTime time.Time, initial machine.State, cfg Config) *Tracker {
	return &Tracker{
		initial: initial,
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordTransition updates the tracked state from a controller
// transition. The initial entry (From == "") sets the state without
// counting as a transition; a return to the initial state closes a
// cycle.
func (t *Tracker) RecordTransition(tr machine.Transition) {
	t.mu.Lock()
	t.snap.State = tr.To
	t.snap.Outputs = tr.Outputs
	t.snap.LastChange = tr.Timestamp
	if tr.From != "" {
		t.snap.Transitions++
		if tr.To == t.initial {
			t.snap.Cycles++
		}
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
