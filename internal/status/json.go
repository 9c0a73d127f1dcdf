package status

import (
	"encoding/json"
	"time"
)

// statusEvent is the system-topic payload carrying a full status
// snapshot (used for STARTUP, SHUTDOWN, and FAULT events).
type statusEvent struct {
	System statusEventInner `json:"system"`
}

type statusEventInner struct {
	Timestamp     string     `json:"timestamp"`
	Event         string     `json:"event"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Transitions   int        `json:"transitions"`
	Cycles        int        `json:"cycles"`
	MQTTConnected bool       `json:"mqtt_connected"`
	Network       *netJSON   `json:"network,omitempty"`
	Config        configJSON `json:"config"`
}

type netJSON struct {
	Type   string `json:"type"`
	IP     string `json:"ip"`
	Status string `json:"status"`
	SSID   string `json:"ssid,omitempty"`
}

type configJSON struct {
	Variant     string `json:"variant"`
	RedMs       int64  `json:"red_ms"`
	RedYellowMs int64  `json:"red_yellow_ms,omitempty"`
	GreenMs     int64  `json:"green_ms"`
	YellowMs    int64  `json:"yellow_ms"`
	DebounceMs  int64  `json:"debounce_ms,omitempty"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

// FormatStatusEvent renders a system event payload carrying the full
// status snapshot.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	ev := statusEvent{
		System: statusEventInner{
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			Event:         event,
			Reason:        reason,
			State:         state,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			Transitions:   snap.Transitions,
			Cycles:        snap.Cycles,
			MQTTConnected: snap.MQTTConnected,
			Config: configJSON{
				Variant:     snap.Config.Variant,
				RedMs:       snap.Config.RedMs,
				RedYellowMs: snap.Config.RedYellowMs,
				GreenMs:     snap.Config.GreenMs,
				YellowMs:    snap.Config.YellowMs,
				DebounceMs:  snap.Config.DebounceMs,
				Broker:      snap.Config.Broker,
				HTTPAddr:    snap.Config.HTTPAddr,
			},
		},
	}

	if snap.Network != nil {
		ev.System.Network = &netJSON{
			Type:   snap.Network.Type,
			IP:     snap.Network.IP,
			Status: snap.Network.Status,
			SSID:   snap.Network.SSID,
		}
	}

	data, _ := json.Marshal(ev)
	return data
}
