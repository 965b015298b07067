package freqcount

import (
	"math"
	"time"
)

// Configuration is handed once to Start. Start keeps its own copy; the caller's value
// is not read again.
type Configuration struct {
	InputPin       Pin // Signal to measure
	CounterUnit    int
	CounterChannel int

	GatePin          Pin // Gate output, also the counter's control input
	GateChannel      int
	GateClockDivisor int // Gate tick = divisor / base clock (160 at 80 MHz = 2 us)
	GateMaxBlocks    int

	SamplingPeriodSeconds float64 // Start-to-start interval between windows
	SamplingWindowSeconds float64 // Gate-open time

	// FilterLength rejects pulses shorter than this many base clock ticks. 0 disables.
	FilterLength int

	// MaxExpectedHz is optional. When set, Start logs an overflow risk if the window
	// would collect more edges than the counter holds.
	MaxExpectedHz float64

	Reporter Reporter
}

// maxPeriodSeconds is the longest period a time.Duration holds.
var maxPeriodSeconds = float64(math.MaxInt64) / float64(time.Second)

func (c *Configuration) period() time.Duration {
	return time.Duration(math.Round(c.SamplingPeriodSeconds * float64(time.Second)))
}

// Validate checks c against limits without touching any hardware.
func (c *Configuration) Validate(limits Limits) error {
	if !(c.SamplingWindowSeconds > 0) || math.IsInf(c.SamplingWindowSeconds, 0) {
		return configError("sampling_window_seconds", c.SamplingWindowSeconds, "must be a positive finite duration")
	}
	if c.SamplingWindowSeconds > maxPeriodSeconds {
		return configError("sampling_window_seconds", c.SamplingWindowSeconds, "must not exceed %.6g s", maxPeriodSeconds)
	}
	if math.IsNaN(c.SamplingPeriodSeconds) || math.IsInf(c.SamplingPeriodSeconds, 0) ||
		c.SamplingPeriodSeconds < c.SamplingWindowSeconds {
		return configError("sampling_period_seconds", c.SamplingPeriodSeconds,
			"must be at least the sampling window (%g s)", c.SamplingWindowSeconds)
	}
	if c.SamplingPeriodSeconds > maxPeriodSeconds {
		return configError("sampling_period_seconds", c.SamplingPeriodSeconds,
			"must not exceed %.6g s", maxPeriodSeconds)
	}
	if c.FilterLength < 0 || c.FilterLength > limits.MaxFilterLength {
		return configError("filter_length", c.FilterLength, "must be in [0, %d]", limits.MaxFilterLength)
	}

	if err := checkPin("input_pin", c.InputPin, limits); err != nil {
		return err
	}
	if err := checkPin("gate_pin", c.GatePin, limits); err != nil {
		return err
	}
	if limits.isInputOnly(c.GatePin) {
		return configError("gate_pin", c.GatePin, "pin is input only")
	}
	if c.InputPin == c.GatePin {
		return configError("gate_pin", c.GatePin, "must differ from input_pin")
	}

	if c.GateChannel < 0 || c.GateChannel >= limits.GateChannels {
		return configError("gate_channel", c.GateChannel, "must be in [0, %d)", limits.GateChannels)
	}
	if c.CounterUnit < 0 || c.CounterUnit >= limits.CounterUnits {
		return configError("counter_unit", c.CounterUnit, "must be in [0, %d)", limits.CounterUnits)
	}
	if c.CounterChannel < 0 || c.CounterChannel >= limits.CounterChannels {
		return configError("counter_channel", c.CounterChannel, "must be in [0, %d)", limits.CounterChannels)
	}
	if c.MaxExpectedHz < 0 || math.IsNaN(c.MaxExpectedHz) {
		return configError("max_expected_hz", c.MaxExpectedHz, "must not be negative")
	}

	return nil
}

func checkPin(field string, pin Pin, limits Limits) error {
	if pin < 0 || int(pin) >= limits.NumPins {
		return configError(field, pin, "must be in [0, %d)", limits.NumPins)
	}
	return nil
}
