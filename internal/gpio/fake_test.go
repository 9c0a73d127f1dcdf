package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/traffic-light/internal/machine"
)

func TestFakeSinkRecordsPatterns(t *testing.T) {
	f := NewFakeSink()

	if _, ok := f.Last(); ok {
		t.Error("empty sink should have no last pattern")
	}

	patterns := []machine.Pattern{
		{Red: true},
		{Red: true, Yellow: true},
		{Green: true},
	}
	for _, p := range patterns {
		if err := f.Apply(p); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	if len(f.Patterns) != 3 {
		t.Fatalf("recorded %d patterns, want 3", len(f.Patterns))
	}
	last, ok := f.Last()
	if !ok || last != (machine.Pattern{Green: true}) {
		t.Errorf("Last: got (%+v, %v)", last, ok)
	}
}

func TestFakeSinkApplyError(t *testing.T) {
	f := NewFakeSink()
	f.ApplyError = errors.New("simulated fault")

	if err := f.Apply(machine.Pattern{Red: true}); err == nil {
		t.Fatal("expected error")
	}
	if len(f.Patterns) != 0 {
		t.Error("failed Apply should record nothing")
	}
}

func TestFakeSinkCloseAndReset(t *testing.T) {
	f := NewFakeSink()
	f.Apply(machine.Pattern{Red: true})
	f.Close()

	if !f.Closed {
		t.Error("should be closed")
	}

	f.Reset()
	if f.Closed || len(f.Patterns) != 0 {
		t.Error("Reset should clear recorded state")
	}
}

func TestFakeTriggerFiresOncePerPress(t *testing.T) {
	f := NewFakeTrigger()

	count := 0
	f.Arm(func() { count++ })

	if !f.Press() {
		t.Fatal("armed press should fire")
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	// Held button: no further delivery, even if re-armed.
	f.Arm(func() { count++ })
	if f.Press() {
		t.Error("press while held should not fire")
	}

	// Release then press fires again.
	f.Release()
	if !f.Press() {
		t.Error("press after release should fire")
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestFakeTriggerOneShotArm(t *testing.T) {
	f := NewFakeTrigger()

	count := 0
	f.Arm(func() { count++ })
	f.Press()
	f.Release()

	// Arm was consumed by the first edge.
	if f.IsArmed() {
		t.Error("trigger should be disarmed after delivery")
	}
	if f.Press() {
		t.Error("press without re-arm should not fire")
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestFakeTriggerDisarm(t *testing.T) {
	f := NewFakeTrigger()

	f.Arm(func() { t.Error("disarmed callback fired") })
	f.Disarm()
	f.Press()
}

func TestFakeTriggerUnarmedPressDropped(t *testing.T) {
	f := NewFakeTrigger()

	// Edge with nobody listening is dropped, not queued.
	f.Press()
	f.Release()

	fired := false
	f.Arm(func() { fired = true })
	if fired {
		t.Error("queued edge delivered on Arm")
	}
}
