//go:generate tinygo flash -target=xiao

//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gofreq/pkg/freqcount"
)

var uart = machine.UART0

func main() {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	cfg := freqcount.Configuration{
		InputPin:              freqcount.Pin(PIN_INPUT),
		GatePin:               freqcount.Pin(PIN_GATE),
		GateClockDivisor:      GATE_DIVISOR,
		GateMaxBlocks:         GATE_MAX_BLOCKS,
		SamplingPeriodSeconds: SAMPLING_PERIOD_S,
		SamplingWindowSeconds: SAMPLING_WINDOW_S,
		FilterLength:          FILTER_LENGTH,
		Reporter:              uartReporter{},
	}

	board := &mcuBoard{limits: mcuLimits()}
	if _, err := freqcount.Start(cfg, board); err != nil {
		// Blink fast forever: the build-time configuration is wrong
		for {
			PIN_LED.Set(!PIN_LED.Get())
			time.Sleep(100 * time.Millisecond)
		}
	}

	select {}
}

// uartReporter lights the LED while the gate is open and prints one report line per window.
type uartReporter struct{}

func (uartReporter) WindowStart() {
	PIN_LED.High()
}

func (uartReporter) FrequencyUpdate(hz float64) {
	PIN_LED.Low()
}

// CycleComplete prints "unix_micros,cycle,count,hz\n".
func (uartReporter) CycleComplete(c freqcount.Cycle) {
	print(c.Start.UnixNano() / 1000)
	print(",")
	print(c.Index)
	print(",")
	print(c.Count)
	print(",")
	printHz(float32(c.Hz))
	print("\n")
}

// printHz prints hz with three decimals without pulling in fmt.
func printHz(hz float32) {
	if math32.Signbit(hz) {
		print("-")
		hz = math32.Abs(hz)
	}
	whole, frac := math32.Modf(hz)
	milli := uint32(math32.Round(frac * 1000))
	if milli == 1000 {
		whole++
		milli = 0
	}

	print(uint32(whole))
	print(".")
	if milli < 100 {
		print("0")
	}
	if milli < 10 {
		print("0")
	}
	print(milli)
}
