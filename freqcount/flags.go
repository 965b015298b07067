package main

import (
	"github.com/itohio/gofreq/pkg/report"
)

// hzValue is a frequency flag that accepts SI prefixes, e.g. "1kHz" or "2.5MHz".
type hzValue struct {
	hz  *float64
	set bool
}

func newHzValue(hz *float64) *hzValue {
	return &hzValue{hz: hz}
}

func (v *hzValue) String() string {
	if v.hz == nil {
		return ""
	}
	return report.FormatHz(*v.hz)
}

func (v *hzValue) Set(s string) error {
	hz, err := report.ParseHz(s)
	if err != nil {
		return err
	}
	*v.hz = hz
	v.set = true
	return nil
}

func (v *hzValue) Type() string {
	return "frequency"
}
