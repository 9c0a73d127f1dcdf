// Package mqtt publishes traffic-light telemetry with abstraction for
// testing. State transitions go to the events topic; process lifecycle
// (startup, shutdown, hardware faults) goes to the system topic.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/traffic-light/internal/machine"
)

// Topic is the MQTT topic for state transition events.
const Topic = "traffic/light/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "traffic/light/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a transition event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a state transition to be published.
type Event struct {
	Timestamp time.Time
	From      machine.State
	To        machine.State
	Outputs   machine.Pattern
}

// SystemEvent represents a system lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "FAULT"
	Reason     string // e.g. "SIGTERM", or the fault error text
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message payload for a transition event.
type Payload struct {
	Light LightPayload `json:"traffic_light"`
}

// LightPayload contains the transition details.
type LightPayload struct {
	Timestamp string       `json:"timestamp"`
	Event     string       `json:"event"`
	From      string       `json:"from,omitempty"`
	State     string       `json:"state"`
	Lamps     LampsPayload `json:"lamps"`
}

// LampsPayload is the applied output pattern.
type LampsPayload struct {
	Red    bool `json:"red"`
	Yellow bool `json:"yellow"`
	Green  bool `json:"green"`
}

// FormatPayload creates the JSON payload for a transition event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Light: LightPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     "ENTER_" + string(event.To),
			From:      string(event.From),
			State:     string(event.To),
			Lamps: LampsPayload{
				Red:    event.Outputs.Red,
				Yellow: event.Outputs.Yellow,
				Green:  event.Outputs.Green,
			},
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for simple system events
// that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
