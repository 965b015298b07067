// Package gpio measures frequency on a Linux host with the GPIO character device.
//
// The kernel delivers edge events for the input line, and a second input line is
// jumpered to the gate output so the counter only counts while the gate is high, as
// the control input of a hardware counter would. Gate timing comes from a software
// timer, so windows are accurate to the scheduler latency of the host.
package gpio

import (
	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
)

// Options describes the chip and the gate readback wiring.
type Options struct {
	Chip        string // e.g. "gpiochip0"
	Consumer    string // Label shown by gpioinfo
	ControlLine int    // Input line wired to the gate output
	BaseClockHz float64
}

// OptionsFromConfig builds Options from the gpio section of the config file.
func OptionsFromConfig(cfg *config.GPIOConfig) Options {
	return Options{
		Chip:        cfg.Chip,
		Consumer:    cfg.Consumer,
		ControlLine: cfg.ControlLine,
		BaseClockHz: cfg.BaseClockHz,
	}
}

// Limits returns the limits of a chip with numLines lines. The gate and counter are
// emulated, so their block and register sizes follow the ESP32 peripherals and a
// Configuration behaves the same on both.
func (o Options) Limits(numLines int) freqcount.Limits {
	l := freqcount.ESP32Limits()
	if o.BaseClockHz > 0 {
		l.BaseClockHz = o.BaseClockHz
	}
	l.NumPins = numLines
	l.InputOnlyPins = []freqcount.Pin{freqcount.Pin(o.ControlLine)}
	l.GateChannels = 1
	l.CounterUnits = 1
	l.CounterChannels = 1
	return l
}
