// Package gpio drives the traffic-light hardware with abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Pin definitions (BCM numbering), matching the deployed wiring.
const (
	DefaultPinRed    = 18
	DefaultPinYellow = 23
	DefaultPinGreen  = 24
	DefaultPinButton = 25
)

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"
