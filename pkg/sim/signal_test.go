package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRisingEdges(t *testing.T) {
	tests := []struct {
		name     string
		signal   Signal
		from, to float64
		filter   float64
		want     int64
	}{
		{name: "no signal", signal: Signal{}, from: 0, to: 1, want: 0},
		{name: "empty range", signal: Signal{FrequencyHz: 1000}, from: 1, to: 1, want: 0},
		{name: "one second", signal: Signal{FrequencyHz: 1000}, from: 0, to: 1, want: 1000},
		{name: "boundary edge excluded at end", signal: Signal{FrequencyHz: 10}, from: 0, to: 0.2, want: 2},
		{name: "boundary edge included at start", signal: Signal{FrequencyHz: 10}, from: 0.1, to: 0.15, want: 1},
		{name: "fractional", signal: Signal{FrequencyHz: 0.5}, from: 0, to: 1, want: 1},
		{name: "phase shifts edges", signal: Signal{FrequencyHz: 10, Phase: 50 * time.Millisecond}, from: 0, to: 0.1, want: 1},
		{name: "window product", signal: Signal{FrequencyHz: 1000}, from: 0, to: 0.02, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.RisingEdges(tt.from, tt.to, tt.filter))
		})
	}
}

func TestRisingEdges_Filter(t *testing.T) {
	// 40 kHz square wave: both halves 12.5 us
	s := Signal{FrequencyHz: 40_000}

	assert.Equal(t, int64(40_000), s.RisingEdges(0, 1, 0))
	assert.Equal(t, int64(40_000), s.RisingEdges(0, 1, 12e-6))
	assert.Zero(t, s.RisingEdges(0, 1, 13e-6), "halves narrower than the filter are swallowed")

	// Narrow duty cycle fails on the high half only
	s = Signal{FrequencyHz: 1000, Duty: 0.001}
	assert.Equal(t, int64(1000), s.RisingEdges(0, 1, 0))
	assert.Zero(t, s.RisingEdges(0, 1, 2e-6))
}

func TestRisingEdges_Glitches(t *testing.T) {
	s := Signal{FrequencyHz: 1000, GlitchHz: 100, GlitchWidth: time.Microsecond}

	assert.Equal(t, int64(1100), s.RisingEdges(0, 1, 0))
	assert.Equal(t, int64(1000), s.RisingEdges(0, 1, 2e-6))
	assert.Equal(t, int64(100), Signal{GlitchHz: 100, GlitchWidth: time.Microsecond}.RisingEdges(0, 1, 0))
}
