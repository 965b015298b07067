package freqcount

import "context"

// Pin identifies a hardware GPIO pin number.
type Pin int

// Limits describes what the peripherals of a board can represent.
// All configuration checks are made against these values before any pin is bound.
type Limits struct {
	BaseClockHz       float64 // Peripheral source clock (APB)
	MaxTicksPerPeriod int     // Longest single gate period in ticks (15-bit duration field)
	ItemsPerBlock     int     // Gate items per memory block, each item holds two periods
	MaxBlocks         int     // Memory blocks a single gate channel may chain
	MaxClockDivisor   int     // Largest gate clock divisor
	MaxFilterLength   int     // Largest pulse-width filter value (10-bit)
	CounterMax        int     // Largest positive count (signed 16-bit register)
	NumPins           int
	InputOnlyPins     []Pin // Pins that cannot drive the gate
	GateChannels      int
	CounterUnits      int
	CounterChannels   int
}

// ESP32Limits returns the limits of the ESP32 RMT (gate) and PCNT (counter) peripherals.
func ESP32Limits() Limits {
	return Limits{
		BaseClockHz:       80_000_000,
		MaxTicksPerPeriod: 32767,
		ItemsPerBlock:     64,
		MaxBlocks:         8,
		MaxClockDivisor:   255,
		MaxFilterLength:   1023,
		CounterMax:        32767,
		NumPins:           40,
		InputOnlyPins:     []Pin{34, 35, 36, 37, 38, 39},
		GateChannels:      8,
		CounterUnits:      8,
		CounterChannels:   2,
	}
}

// isInputOnly reports whether pin cannot be used as an output.
func (l Limits) isInputOnly(pin Pin) bool {
	for _, p := range l.InputOnlyPins {
		if p == pin {
			return true
		}
	}
	return false
}

// Board hands out the two peripherals the counter needs.
// Implementations: sim.Board (simulated), gpio.Board (Linux GPIO character device),
// and the TinyGo firmware board.
type Board interface {
	// Limits returns the hardware limits used to validate a Configuration.
	Limits() Limits

	// Gate binds gate generator channel to the output pin.
	Gate(channel int, pin Pin) (GateGenerator, error)

	// Counter binds the edge counter unit/channel.
	Counter(unit, channel int) (EdgeCounter, error)
}

// GateGenerator drives the hardware-timed gate pulse.
type GateGenerator interface {
	// Arm schedules exactly one gate pulse described by plan and returns immediately.
	// The hardware raises and lowers the gate line without software help.
	Arm(plan *GatePlan) error

	// Close releases the channel and its pin.
	Close() error
}

// GateWaiter is implemented by gate generators that can signal the end of a pulse.
type GateWaiter interface {
	// Wait blocks until the armed pulse has finished or ctx is done.
	Wait(ctx context.Context) error
}

// EdgeCounter counts rising edges of the input while its control input is high.
type EdgeCounter interface {
	// Configure routes input and control pins, installs the filter and clears the count.
	// A filterLength of 0 disables filtering.
	Configure(input, control Pin, filterLength int) error

	// Clear resets the count register.
	Clear() error

	// ReadAndClear returns the count register and clears it in one step.
	ReadAndClear() (int16, error)

	// Close releases the unit and its pins.
	Close() error
}

// WiringChecker is implemented by boards that can verify the gate output actually
// reaches the counter's control input. Boards that cannot check leave the physical
// connection to the caller.
type WiringChecker interface {
	CheckGateWiring(gate Pin) error
}
