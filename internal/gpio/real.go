//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/traffic-light/internal/machine"
)

// Lamps drives the three lamp outputs on actual hardware. All three
// pins are held by a single line request so a pattern is applied with
// one SetValues call — no observer ever sees a half-applied pattern.
type Lamps struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewLamps requests the lamp pins as outputs, initially all off.
func NewLamps(chipName string, pinRed, pinYellow, pinGreen int) (*Lamps, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines([]int{pinRed, pinYellow, pinGreen}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request lamp pins %d/%d/%d: %w", pinRed, pinYellow, pinGreen, err)
	}

	return &Lamps{chip: chip, lines: lines}, nil
}

// Apply sets all three lamp levels in a single request.
func (l *Lamps) Apply(p machine.Pattern) error {
	vals := []int{level(p.Red), level(p.Yellow), level(p.Green)}
	if err := l.lines.SetValues(vals); err != nil {
		return fmt.Errorf("set lamp levels: %w", err)
	}
	return nil
}

// Close drives all lamps off before releasing the lines, so a stopped
// controller never leaves a stale pattern lit.
func (l *Lamps) Close() error {
	var errs []error

	if l.lines != nil {
		if err := l.lines.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("clear lamps: %w", err))
		}
		if err := l.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lamp lines: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

// Button watches the trigger input for rising edges. The kernel
// debounces contact bounce; on top of that the watcher requires a
// falling edge between deliveries, so a held button fires at most once
// per press. Arm is one-shot: the callback is delivered for a single
// edge and must be re-armed for the next one. Edges while disarmed are
// dropped, not queued.
type Button struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu    sync.Mutex
	armed func()
	ready bool // input has been observed inactive since the last delivery
}

// NewButton requests the button pin with pull-down and edge events.
func NewButton(chipName string, pin int, debounce time.Duration) (*Button, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-down means inactive at rest, so the first press is a valid
	// rising edge.
	b := &Button{chip: chip, ready: true}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	b.line = line

	return b, nil
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	b.mu.Lock()
	switch evt.Type {
	case gpiocdev.LineEventFallingEdge:
		b.ready = true
		b.mu.Unlock()
	case gpiocdev.LineEventRisingEdge:
		if b.armed == nil || !b.ready {
			b.mu.Unlock()
			return
		}
		fn := b.armed
		b.armed = nil
		b.ready = false
		b.mu.Unlock()
		fn()
	default:
		b.mu.Unlock()
	}
}

// Arm registers fn for the next qualifying rising edge.
func (b *Button) Arm(fn func()) {
	b.mu.Lock()
	b.armed = fn
	b.mu.Unlock()
}

// Disarm drops any registered callback.
func (b *Button) Disarm() {
	b.mu.Lock()
	b.armed = nil
	b.mu.Unlock()
}

// Close releases the button line and chip.
func (b *Button) Close() error {
	b.Disarm()

	var errs []error
	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
