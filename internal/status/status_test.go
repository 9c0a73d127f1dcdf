package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/traffic-light/internal/machine"
)

func testConfig() Config {
	return Config{
		Variant:  "auto",
		RedMs:    5000,
		GreenMs:  5000,
		YellowMs: 2000,
		Broker:   "tcp://localhost:1883",
		HTTPAddr: ":8080",
	}
}

func TestTrackerRecordTransition(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(start, machine.StateRed, testConfig())

	// Initial entry: state set, not counted.
	tr.RecordTransition(machine.Transition{
		Timestamp: start,
		To:        machine.StateRed,
		Outputs:   machine.Pattern{Red: true},
	})

	snap := tr.Snapshot()
	if snap.State != machine.StateRed {
		t.Errorf("state: %s", snap.State)
	}
	if snap.Transitions != 0 {
		t.Errorf("initial entry counted as transition: %d", snap.Transitions)
	}
	if snap.Cycles != 0 {
		t.Errorf("initial entry counted as cycle: %d", snap.Cycles)
	}

	// One full cycle: Red -> Green -> Yellow -> Red.
	steps := []machine.Transition{
		{Timestamp: start.Add(5 * time.Second), From: machine.StateRed, To: machine.StateGreen, Outputs: machine.Pattern{Green: true}},
		{Timestamp: start.Add(10 * time.Second), From: machine.StateGreen, To: machine.StateYellow, Outputs: machine.Pattern{Yellow: true}},
		{Timestamp: start.Add(12 * time.Second), From: machine.StateYellow, To: machine.StateRed, Outputs: machine.Pattern{Red: true}},
	}
	for _, s := range steps {
		tr.RecordTransition(s)
	}

	snap = tr.Snapshot()
	if snap.Transitions != 3 {
		t.Errorf("transitions: got %d, want 3", snap.Transitions)
	}
	if snap.Cycles != 1 {
		t.Errorf("cycles: got %d, want 1", snap.Cycles)
	}
	if snap.State != machine.StateRed || snap.Outputs != (machine.Pattern{Red: true}) {
		t.Errorf("state/outputs: %s %+v", snap.State, snap.Outputs)
	}
	if !snap.LastChange.Equal(start.Add(12 * time.Second)) {
		t.Errorf("last change: %v", snap.LastChange)
	}
}

func TestTrackerFlags(t *testing.T) {
	tr := NewTracker(time.Now(), machine.StateIdle, testConfig())

	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.50", Status: "connected"})

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("mqtt connected flag not set")
	}
	if snap.Network == nil || snap.Network.IP != "192.168.1.50" {
		t.Errorf("network: %+v", snap.Network)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if snap.Uptime() != 90*time.Second {
		t.Errorf("uptime: %v", snap.Uptime())
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := Snapshot{
		State:         machine.StateGreen,
		Transitions:   7,
		Cycles:        2,
		StartTime:     start,
		Now:           start.Add(65 * time.Second),
		MQTTConnected: true,
		Config:        testConfig(),
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var got map[string]map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sys := got["system"]
	if sys["event"] != "SHUTDOWN" || sys["reason"] != "SIGTERM" {
		t.Errorf("event/reason: %v %v", sys["event"], sys["reason"])
	}
	if sys["state"] != "GREEN" {
		t.Errorf("state: %v", sys["state"])
	}
	if sys["uptime_seconds"] != float64(65) {
		t.Errorf("uptime_seconds: %v", sys["uptime_seconds"])
	}
	if sys["transitions"] != float64(7) || sys["cycles"] != float64(2) {
		t.Errorf("counts: %v %v", sys["transitions"], sys["cycles"])
	}
}

func TestFormatStatusEventUnknownState(t *testing.T) {
	snap := Snapshot{Now: time.Now(), StartTime: time.Now()}
	data := FormatStatusEvent(snap, "STARTUP", "")

	var got map[string]map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["system"]["state"] != "UNKNOWN" {
		t.Errorf("state: %v", got["system"]["state"])
	}
}
