package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends understood by the runner.
const (
	BackendSim      = "sim"
	BackendGPIOCDev = "gpiocdev"
)

// Config represents the application configuration.
type Config struct {
	Backend  string         `yaml:"backend"`
	Counter  CounterConfig  `yaml:"counter"`
	Gate     GateConfig     `yaml:"gate"`
	Sampling SamplingConfig `yaml:"sampling"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Serial   SerialConfig   `yaml:"serial"`
	Sim      SimConfig      `yaml:"sim"`
}

// CounterConfig contains the edge counter assignment.
type CounterConfig struct {
	InputPin     int `yaml:"input_pin"`
	Unit         int `yaml:"unit"`
	Channel      int `yaml:"channel"`
	FilterLength int `yaml:"filter_length"` // Base clock ticks, 0 disables the filter
}

// GateConfig contains the gate generator assignment.
type GateConfig struct {
	Pin          int `yaml:"pin"`
	Channel      int `yaml:"channel"`
	ClockDivisor int `yaml:"clock_divisor"` // 160 at 80 MHz gives 2 us ticks
	MaxBlocks    int `yaml:"max_blocks"`
}

// SamplingConfig contains window timing.
type SamplingConfig struct {
	PeriodSeconds float64 `yaml:"period_seconds"`
	WindowSeconds float64 `yaml:"window_seconds"`
	MaxExpectedHz float64 `yaml:"max_expected_hz"` // Optional, only used to warn about overflow
}

// GPIOConfig contains the Linux GPIO character device backend settings.
type GPIOConfig struct {
	Chip        string  `yaml:"chip"`
	Consumer    string  `yaml:"consumer"`
	ControlLine int     `yaml:"control_line"`  // Input line jumpered to the gate pin
	BaseClockHz float64 `yaml:"base_clock_hz"` // Clock the filter length is expressed in
}

// SerialConfig contains the report link settings.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SimConfig contains the simulated input signal.
type SimConfig struct {
	SignalHz    float64       `yaml:"signal_hz"`
	Duty        float64       `yaml:"duty"`
	Phase       time.Duration `yaml:"phase"`
	GlitchHz    float64       `yaml:"glitch_hz"`
	GlitchWidth time.Duration `yaml:"glitch_width"`
	Virtual     bool          `yaml:"virtual"` // Run on a virtual clock instead of wall time
}

// Default returns a default configuration with sensible values.
// The 10 s window holds inputs up to 3,276.7 Hz; the filter alone limits to 39,100 Hz.
func Default() *Config {
	return &Config{
		Backend: BackendSim,
		Counter: CounterConfig{
			InputPin:     4,
			Unit:         0,
			Channel:      0,
			FilterLength: 1023,
		},
		Gate: GateConfig{
			Pin:          12,
			Channel:      0,
			ClockDivisor: 160,
			MaxBlocks:    2,
		},
		Sampling: SamplingConfig{
			PeriodSeconds: 12,
			WindowSeconds: 10,
		},
		GPIO: GPIOConfig{
			Chip:        "gpiochip0",
			Consumer:    "gofreq",
			ControlLine: 13,
			BaseClockHz: 80_000_000,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 115200,
		},
		Sim: SimConfig{
			SignalHz: 1000,
			Duty:     0.5,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills fields whose zero value is never valid.
// Pins, units, channels and the filter length are left alone: zero is a real setting.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Backend == "" {
		c.Backend = def.Backend
	}

	if c.Gate.ClockDivisor == 0 {
		c.Gate.ClockDivisor = def.Gate.ClockDivisor
	}
	if c.Gate.MaxBlocks == 0 {
		c.Gate.MaxBlocks = def.Gate.MaxBlocks
	}

	if c.Sampling.WindowSeconds == 0 {
		c.Sampling.WindowSeconds = def.Sampling.WindowSeconds
	}
	if c.Sampling.PeriodSeconds == 0 {
		c.Sampling.PeriodSeconds = def.Sampling.PeriodSeconds
	}

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.GPIO.Consumer == "" {
		c.GPIO.Consumer = def.GPIO.Consumer
	}
	if c.GPIO.BaseClockHz == 0 {
		c.GPIO.BaseClockHz = def.GPIO.BaseClockHz
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
}
