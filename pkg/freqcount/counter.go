package freqcount

import (
	"math"
	"time"
)

// Frequency converts a raw gated count into Hz.
// The count is used as read from the register; a wrapped register yields a wrapped result.
func Frequency(count int16, windowSeconds float64) float64 {
	return float64(count) / windowSeconds
}

// FilterWidth returns the narrowest pulse the counter accepts for filterLength.
// Zero means no filtering.
func FilterWidth(filterLength int, limits Limits) time.Duration {
	if filterLength <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(filterLength) / limits.BaseClockHz * float64(time.Second)))
}

// FilterCutoffHz is the highest square-wave frequency that passes the filter.
// Both half-periods must be at least as wide as the filter.
func FilterCutoffHz(filterLength int, limits Limits) float64 {
	if filterLength <= 0 {
		return math.Inf(1)
	}
	return limits.BaseClockHz / (2 * float64(filterLength))
}

// MaxMeasurableHz is the frequency at which the gated count reaches the register capacity.
func MaxMeasurableHz(windowSeconds float64, limits Limits) float64 {
	return float64(limits.CounterMax) / windowSeconds
}

// WrapCount truncates an accumulated edge count to the signed 16-bit register.
func WrapCount(edges int64) int16 {
	return int16(edges)
}
