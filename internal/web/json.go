package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/traffic-light/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string       `json:"state"`
	Lamps         LampsJSON    `json:"lamps"`
	Transitions   int          `json:"transitions"`
	Cycles        int          `json:"cycles"`
	LastChange    string       `json:"last_change,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// LampsJSON is the JSON representation of the applied output pattern.
type LampsJSON struct {
	Red    bool `json:"red"`
	Yellow bool `json:"yellow"`
	Green  bool `json:"green"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Variant     string `json:"variant"`
	RedMs       int64  `json:"red_ms"`
	RedYellowMs int64  `json:"red_yellow_ms,omitempty"`
	GreenMs     int64  `json:"green_ms"`
	YellowMs    int64  `json:"yellow_ms"`
	DebounceMs  int64  `json:"debounce_ms,omitempty"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func formatJSON(snap status.Snapshot) []byte {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	sj := StatusJSON{
		Status: StatusInner{
			State: state,
			Lamps: LampsJSON{
				Red:    snap.Outputs.Red,
				Yellow: snap.Outputs.Yellow,
				Green:  snap.Outputs.Green,
			},
			Transitions:   snap.Transitions,
			Cycles:        snap.Cycles,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Config: ConfigJSON{
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

	if !snap.LastChange.IsZero() {
		sj.Status.LastChange = snap.LastChange.UTC().Format(time.RFC3339)
	}

	if snap.Network != nil {
		sj.Status.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
