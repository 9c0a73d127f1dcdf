//go:build !linux

package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/traffic-light/internal/machine"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Lamps is not available on non-Linux platforms.
type Lamps struct{}

// NewLamps returns an error on non-Linux platforms.
func NewLamps(chipName string, pinRed, pinYellow, pinGreen int) (*Lamps, error) {
	return nil, errUnsupported
}

// Apply is not implemented on non-Linux platforms.
func (l *Lamps) Apply(machine.Pattern) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (l *Lamps) Close() error { return nil }

// Button is not available on non-Linux platforms.
type Button struct{}

// NewButton returns an error on non-Linux platforms.
func NewButton(chipName string, pin int, debounce time.Duration) (*Button, error) {
	return nil, errUnsupported
}

// Arm is not implemented on non-Linux platforms.
func (b *Button) Arm(func()) {}

// Disarm is not implemented on non-Linux platforms.
func (b *Button) Disarm() {}

// Close is not implemented on non-Linux platforms.
func (b *Button) Close() error { return nil }
