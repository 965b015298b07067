package freqcount

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("invalid frequency counter configuration")

// ErrGateBusy is returned when a gate is armed while its previous pulse is still running.
var ErrGateBusy = errors.New("gate pulse already in progress")

// ConfigurationError reports a Configuration the hardware cannot serve.
// It is always returned synchronously by Start; the measurement loop never runs.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
	Err    error // Underlying board error, if any
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%v: %s=%v: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field string, value any, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Value:  value,
		Reason: fmt.Sprintf(format, args...),
	}
}
