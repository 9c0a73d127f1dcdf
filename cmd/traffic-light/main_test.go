package main

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/traffic-light/internal/machine"
	"github.com/sweeney/traffic-light/internal/mqtt"
	"github.com/sweeney/traffic-light/internal/status"
)

func defaultConfig() config {
	return config{
		variant:   "auto",
		red:       5 * time.Second,
		redYellow: 2 * time.Second,
		green:     5 * time.Second,
		yellow:    2 * time.Second,
		debounce:  50 * time.Millisecond,
		broker:    "tcp://localhost:1883",
		httpAddr:  ":8080",
	}
}

func TestBuildTableAuto(t *testing.T) {
	tbl, err := buildTable(defaultConfig())
	if err != nil {
		t.Fatalf("buildTable: %v", err)
	}
	if tbl.Initial() != machine.StateRed {
		t.Errorf("initial: %s", tbl.Initial())
	}
	if tbl.Len() != 3 {
		t.Errorf("len: %d", tbl.Len())
	}
	if tbl.NeedsTrigger() {
		t.Error("auto variant should not need a trigger")
	}
	if d := tbl.Dwell(machine.StateRed).Duration; d != 5*time.Second {
		t.Errorf("red dwell: %v", d)
	}
}

func TestBuildTableButton(t *testing.T) {
	cfg := defaultConfig()
	cfg.variant = "button"

	tbl, err := buildTable(cfg)
	if err != nil {
		t.Fatalf("buildTable: %v", err)
	}
	if tbl.Initial() != machine.StateIdle {
		t.Errorf("initial: %s", tbl.Initial())
	}
	if tbl.Len() != 5 {
		t.Errorf("len: %d", tbl.Len())
	}
	if !tbl.NeedsTrigger() {
		t.Error("button variant should need a trigger")
	}
}

func TestBuildTableUnknownVariant(t *testing.T) {
	cfg := defaultConfig()
	cfg.variant = "disco"
	if _, err := buildTable(cfg); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestBuildTableBadDuration(t *testing.T) {
	cfg := defaultConfig()
	cfg.red = 0
	_, err := buildTable(cfg)
	if err == nil {
		t.Fatal("expected error for zero duration")
	}
	if !errors.Is(err, machine.ErrInvalidTable) {
		t.Errorf("error should wrap ErrInvalidTable, got %v", err)
	}
}

func TestStatusConfigOmitsButtonFieldsForAuto(t *testing.T) {
	sc := statusConfig(defaultConfig())
	if sc.RedYellowMs != 0 || sc.DebounceMs != 0 {
		t.Errorf("auto variant should not report button config: %+v", sc)
	}

	cfg := defaultConfig()
	cfg.variant = "button"
	sc = statusConfig(cfg)
	if sc.RedYellowMs != 2000 || sc.DebounceMs != 50 {
		t.Errorf("button config: %+v", sc)
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("SIGINT: %s", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("SIGTERM: %s", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("SIGHUP: %s", got)
	}
}

func TestHandleTransition(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	publisher := mqtt.NewFakePublisher()
	publisher.Connected = true
	tracker := status.NewTracker(start, machine.StateRed, statusConfig(defaultConfig()))

	tr := machine.Transition{
		Timestamp: start.Add(5 * time.Second),
		From:      machine.StateRed,
		To:        machine.StateGreen,
		Outputs:   machine.Pattern{Green: true},
	}
	handleTransition(publisher, publisher, tracker, tr)

	if len(publisher.Events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.Events))
	}
	if publisher.Events[0].To != machine.StateGreen {
		t.Errorf("event: %+v", publisher.Events[0])
	}

	snap := tracker.Snapshot()
	if snap.State != machine.StateGreen {
		t.Errorf("tracker state: %s", snap.State)
	}
	if !snap.MQTTConnected {
		t.Error("tracker should reflect publisher connectivity")
	}
}

func TestHandleTransitionPublishFailureIsNotFatal(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	publisher.PublishError = errors.New("broker down")
	tracker := status.NewTracker(time.Now(), machine.StateRed, statusConfig(defaultConfig()))

	// Must not panic; the error is logged and dropped.
	handleTransition(publisher, publisher, tracker, machine.Transition{
		From: machine.StateRed,
		To:   machine.StateGreen,
	})

	if tracker.Snapshot().State != machine.StateGreen {
		t.Error("tracker should still be updated on publish failure")
	}
}

func TestRunLoopShutdownOnSignal(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), machine.StateRed, statusConfig(defaultConfig()))

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	if err := runLoop(publisher, publisher, tracker, nil, nil, sig); err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	if len(publisher.SystemEvents) != 1 {
		t.Fatalf("published %d system events, want 1", len(publisher.SystemEvents))
	}
	ev := publisher.SystemEvents[0]
	if ev.Event != "SHUTDOWN" || ev.Reason != "SIGTERM" {
		t.Errorf("system event: %+v", ev)
	}
	if !ev.Retained {
		t.Error("shutdown event should be retained")
	}
	if !strings.Contains(string(publisher.SystemPayloads[0]), `"event":"SHUTDOWN"`) {
		t.Errorf("payload: %s", publisher.SystemPayloads[0])
	}
}

func TestRunLoopExitsOnControllerFault(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), machine.StateRed, statusConfig(defaultConfig()))

	fault := errors.New("lamp write failed")
	fatal := make(chan error, 1)
	fatal <- fault

	err := runLoop(publisher, publisher, tracker, nil, fatal, nil)
	if !errors.Is(err, fault) {
		t.Fatalf("runLoop error: %v, want %v", err, fault)
	}

	if len(publisher.SystemEvents) != 1 || publisher.SystemEvents[0].Event != "FAULT" {
		t.Fatalf("system events: %+v", publisher.SystemEvents)
	}
	if publisher.SystemEvents[0].Reason != "lamp write failed" {
		t.Errorf("reason: %s", publisher.SystemEvents[0].Reason)
	}
}

func TestEnvVarNames(t *testing.T) {
	// These are the canonical names from pi-helper. If pi-helper
	// changes its var names, this test fails and we update the
	// constants — not the other way around.
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	if info.Type != "wifi" || info.IP != "192.168.1.100" || info.SSID != "MyNetwork" {
		t.Errorf("info: %+v", info)
	}
}

func TestReadNetworkInfoUnset(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil without %s, got %+v", envNetworkStatus, info)
	}
}
