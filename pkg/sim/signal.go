package sim

import (
	"math"
	"time"
)

// Signal is a square wave with optional narrow glitches.
type Signal struct {
	FrequencyHz float64       // 0 means the pin stays low
	Duty        float64       // Fraction of the period spent high, defaults to 0.5
	Phase       time.Duration // Time of the first rising edge after the board epoch
	GlitchHz    float64       // Rate of extra narrow pulses
	GlitchWidth time.Duration // Width of each glitch pulse
}

func (s Signal) duty() float64 {
	if s.Duty <= 0 || s.Duty >= 1 {
		return 0.5
	}
	return s.Duty
}

// RisingEdges counts the rising edges in [from, to) seconds after the epoch that
// survive a pulse-width filter of filter seconds.
//
// A square wave passes only if both its high and low halves are at least as wide as
// the filter; a narrower half is swallowed and with it every edge. Glitches are offset
// by half a glitch period from Phase and pass when GlitchWidth is not below the filter.
func (s Signal) RisingEdges(from, to, filter float64) int64 {
	if to <= from {
		return 0
	}

	var n int64
	phase := s.Phase.Seconds()
	if s.FrequencyHz > 0 {
		period := 1 / s.FrequencyHz
		high := s.duty() * period
		low := period - high
		if high >= filter && low >= filter {
			n += edgesIn(from, to, s.FrequencyHz, phase)
		}
	}
	if s.GlitchHz > 0 && s.GlitchWidth > 0 && s.GlitchWidth.Seconds() >= filter {
		n += edgesIn(from, to, s.GlitchHz, phase+0.5/s.GlitchHz)
	}
	return n
}

// edgeEpsilon absorbs float error when an edge lands on a window boundary.
const edgeEpsilon = 1e-9

// edgesIn counts instants phase + k/hz inside [from, to).
func edgesIn(from, to, hz, phase float64) int64 {
	return int64(math.Ceil((to-phase)*hz-edgeEpsilon) - math.Ceil((from-phase)*hz-edgeEpsilon))
}
