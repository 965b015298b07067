//go:build tinygo

package main

import "machine"

const (
	// Measurement configuration
	SAMPLING_PERIOD_S = 12  // Start-to-start interval between windows
	SAMPLING_WINDOW_S = 10  // Gate-open time
	GATE_DIVISOR      = 160 // 2 us gate ticks at the 80 MHz reference
	GATE_MAX_BLOCKS   = 2
	FILTER_LENGTH     = 1023 // Reject pulses shorter than 12.8 us

	// Input signal pin
	PIN_INPUT = machine.D2
	// Gate output pin, jumpered back to the counter as its control input
	PIN_GATE = machine.D3

	PIN_LED = machine.LED

	// Serial configuration
	// Format "unix_micros,cycle,count,hz\n", e.g. "1700000000000000,12345,32767,3276.700\n"
	// is ~40 bytes once per window, far below any baud rate.
	UART_BAUD_RATE = 115200
)
