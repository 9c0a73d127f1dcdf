// Command traffic-light drives a three-lamp traffic light on GPIO and
// publishes state changes to MQTT.
//
// Two variants are supported. "auto" cycles on timers alone
// (Red -> Green -> Yellow -> Red); "button" idles with all lamps on
// until the button is pressed, runs one full cycle
// (Red -> Red+Yellow -> Green -> Yellow) and returns to idle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/traffic-light/internal/gpio"
	"github.com/sweeney/traffic-light/internal/machine"
	"github.com/sweeney/traffic-light/internal/mqtt"
	"github.com/sweeney/traffic-light/internal/sched"
	"github.com/sweeney/traffic-light/internal/status"
	"github.com/sweeney/traffic-light/internal/web"
)

type config struct {
	variant   string
	red       time.Duration
	redYellow time.Duration
	green     time.Duration
	yellow    time.Duration
	debounce  time.Duration

	chip      string
	pinRed    int
	pinYellow int
	pinGreen  int
	pinButton int

	broker   string
	httpAddr string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.variant, "variant", "auto", `Controller variant: "auto" (timed cycle) or "button" (idle until pressed)`)
	flag.DurationVar(&cfg.red, "red", 5*time.Second, "Red dwell duration")
	flag.DurationVar(&cfg.redYellow, "red-yellow", 2*time.Second, "Red+yellow dwell duration (button variant only)")
	flag.DurationVar(&cfg.green, "green", 5*time.Second, "Green dwell duration")
	flag.DurationVar(&cfg.yellow, "yellow", 2*time.Second, "Yellow dwell duration")
	flag.DurationVar(&cfg.debounce, "debounce", 50*time.Millisecond, "Button debounce duration")
	flag.StringVar(&cfg.chip, "chip", gpio.DefaultChip, "GPIO character device")
	flag.IntVar(&cfg.pinRed, "pin-red", gpio.DefaultPinRed, "BCM pin number for the red lamp")
	flag.IntVar(&cfg.pinYellow, "pin-yellow", gpio.DefaultPinYellow, "BCM pin number for the yellow lamp")
	flag.IntVar(&cfg.pinGreen, "pin-green", gpio.DefaultPinGreen, "BCM pin number for the green lamp")
	flag.IntVar(&cfg.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the button")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// buildTable maps the variant flag onto a validated state table.
func buildTable(cfg config) (*machine.Table, error) {
	switch cfg.variant {
	case "auto":
		return machine.Automatic(cfg.red, cfg.green, cfg.yellow)
	case "button":
		return machine.Triggered(cfg.red, cfg.redYellow, cfg.green, cfg.yellow)
	default:
		return nil, fmt.Errorf("unknown variant %q (want auto or button)", cfg.variant)
	}
}

func statusConfig(cfg config) status.Config {
	sc := status.Config{
		Variant:  cfg.variant,
		RedMs:    cfg.red.Milliseconds(),
		GreenMs:  cfg.green.Milliseconds(),
		YellowMs: cfg.yellow.Milliseconds(),
		Broker:   cfg.broker,
		HTTPAddr: cfg.httpAddr,
	}
	if cfg.variant == "button" {
		sc.RedYellowMs = cfg.redYellow.Milliseconds()
		sc.DebounceMs = cfg.debounce.Milliseconds()
	}
	return sc
}

func run(cfg config) error {
	table, err := buildTable(cfg)
	if err != nil {
		return err
	}

	// Initialize GPIO. The lamps handle drives all off on Close, so
	// every exit path leaves the light dark rather than frozen.
	lamps, err := gpio.NewLamps(cfg.chip, cfg.pinRed, cfg.pinYellow, cfg.pinGreen)
	if err != nil {
		return fmt.Errorf("init lamps: %w", err)
	}
	defer lamps.Close()

	var trigger machine.Trigger
	if table.NeedsTrigger() {
		button, err := gpio.NewButton(cfg.chip, cfg.pinButton, cfg.debounce)
		if err != nil {
			return fmt.Errorf("init button: %w", err)
		}
		defer button.Close()
		trigger = button
	}

	// Initialize MQTT. Connects in the background; events published
	// before the broker is up are buffered and replayed.
	publisher := mqtt.NewRealPublisher(cfg.broker)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), table.Initial(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	publishLifecycle(publisher, publisher, tracker, "STARTUP", "")

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	// The controller notifies from its timer goroutine; fan out
	// through a buffered channel so publishing never blocks a
	// transition.
	transitions := make(chan machine.Transition, 16)
	ctrl, err := machine.NewController(table, lamps, sched.NewTimer(), machine.Options{
		Trigger: trigger,
		Notify: func(tr machine.Transition) {
			select {
			case transitions <- tr:
			default:
				log.Printf("transition channel full, dropping %s -> %s", tr.From, tr.To)
			}
		},
	})
	if err != nil {
		return err
	}

	if err := ctrl.Start(); err != nil {
		return err
	}
	defer ctrl.Stop()

	log.Printf("started: variant=%s red=%v green=%v yellow=%v broker=%s",
		cfg.variant, cfg.red, cfg.green, cfg.yellow, cfg.broker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(publisher, publisher, tracker, transitions, ctrl.Fatal(), sigCh)
}

func runLoop(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, transitions <-chan machine.Transition, fatal <-chan error, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			publishLifecycle(publisher, mqttStatus, tracker, "SHUTDOWN", signalName(s))
			return nil

		case err := <-fatal:
			log.Printf("controller fault: %v", err)
			publishLifecycle(publisher, mqttStatus, tracker, "FAULT", err.Error())
			return err

		case tr := <-transitions:
			handleTransition(publisher, mqttStatus, tracker, tr)
		}
	}
}

func handleTransition(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, tr machine.Transition) {
	log.Printf("entered %s (red=%v yellow=%v green=%v)",
		tr.To, tr.Outputs.Red, tr.Outputs.Yellow, tr.Outputs.Green)

	tracker.RecordTransition(tr)
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	event := mqtt.Event{
		Timestamp: tr.Timestamp,
		From:      tr.From,
		To:        tr.To,
		Outputs:   tr.Outputs,
	}
	if err := publisher.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
}

// publishLifecycle sends a system event carrying a full status
// snapshot. Failures are logged, never fatal.
func publishLifecycle(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, event, reason string) {
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	snap := tracker.Snapshot()
	sysEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(sysEvent); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
