package report

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// ToFrequency converts Hz to a physic.Frequency, rounding to the nearest nanohertz.
func ToFrequency(hz float64) physic.Frequency {
	return physic.Frequency(math.Round(hz * float64(physic.Hertz)))
}

// FromFrequency converts a physic.Frequency to Hz.
func FromFrequency(f physic.Frequency) float64 {
	return float64(f) / float64(physic.Hertz)
}

// FormatHz renders hz with an SI prefix, e.g. "1kHz". Negative values come from a
// wrapped counter and keep their sign.
func FormatHz(hz float64) string {
	if math.IsNaN(hz) || math.IsInf(hz, 0) {
		return fmt.Sprintf("%gHz", hz)
	}
	if hz < 0 {
		return "-" + ToFrequency(-hz).String()
	}
	return ToFrequency(hz).String()
}

// ParseHz parses a frequency such as "1kHz", "2.5MHz" or "50Hz".
func ParseHz(s string) (float64, error) {
	var f physic.Frequency
	if err := f.Set(s); err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}
	return FromFrequency(f), nil
}
