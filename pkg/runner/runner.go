// Package runner turns an application Config into a running frequency counter.
package runner

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/gpio"
	"github.com/itohio/gofreq/pkg/sim"
)

// Configuration maps the config file onto a counter Configuration reporting to reporter.
func Configuration(cfg *config.Config, reporter freqcount.Reporter) freqcount.Configuration {
	return freqcount.Configuration{
		InputPin:              freqcount.Pin(cfg.Counter.InputPin),
		CounterUnit:           cfg.Counter.Unit,
		CounterChannel:        cfg.Counter.Channel,
		GatePin:               freqcount.Pin(cfg.Gate.Pin),
		GateChannel:           cfg.Gate.Channel,
		GateClockDivisor:      cfg.Gate.ClockDivisor,
		GateMaxBlocks:         cfg.Gate.MaxBlocks,
		SamplingPeriodSeconds: cfg.Sampling.PeriodSeconds,
		SamplingWindowSeconds: cfg.Sampling.WindowSeconds,
		FilterLength:          cfg.Counter.FilterLength,
		MaxExpectedHz:         cfg.Sampling.MaxExpectedHz,
		Reporter:              reporter,
	}
}

// Hardware is an opened board with the clock that drives it.
type Hardware struct {
	Board freqcount.Board
	Clock freqcount.Clock
	close func() error
}

// Close releases the board. Tasks running on it must be stopped first.
func (h *Hardware) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Open opens the backend selected in cfg.
func Open(cfg *config.Config) (*Hardware, error) {
	switch cfg.Backend {
	case config.BackendSim, "":
		return openSim(cfg), nil
	case config.BackendGPIOCDev:
		return openGPIO(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// openSim builds a simulated board with the configured signal on the input pin.
func openSim(cfg *config.Config) *Hardware {
	var clock freqcount.Clock = freqcount.SystemClock{}
	if cfg.Sim.Virtual {
		clock = sim.NewClock(time.Now())
	}

	board := sim.New(clock)
	signal := simSignal(&cfg.Sim)
	board.Attach(freqcount.Pin(cfg.Counter.InputPin), signal)
	log.Printf("Simulating %.3f Hz on pin %d", signal.FrequencyHz, cfg.Counter.InputPin)

	return &Hardware{Board: board, Clock: clock}
}

// simSignal maps the simulator section of the config file onto a Signal.
func simSignal(cfg *config.SimConfig) sim.Signal {
	return sim.Signal{
		FrequencyHz: cfg.SignalHz,
		Duty:        cfg.Duty,
		Phase:       cfg.Phase,
		GlitchHz:    cfg.GlitchHz,
		GlitchWidth: cfg.GlitchWidth,
	}
}

// Limits returns the limits cfg is checked against without opening any hardware,
// and a short name for them. Line numbers of a gpiocdev chip are only known once the
// chip is opened, so they are not range checked here.
func Limits(cfg *config.Config) (freqcount.Limits, string) {
	if cfg.Backend == config.BackendGPIOCDev {
		return gpio.OptionsFromConfig(&cfg.GPIO).Limits(math.MaxInt32), "gpiocdev (line numbers checked on open)"
	}
	return freqcount.ESP32Limits(), "ESP32"
}

// Start opens the backend and starts a counter reporting to reporter.
// The returned Hardware must be closed after the task is stopped.
func Start(cfg *config.Config, reporter freqcount.Reporter, opts ...freqcount.Option) (*freqcount.Task, *Hardware, error) {
	hw, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]freqcount.Option{freqcount.WithClock(hw.Clock)}, opts...)
	task, err := freqcount.Start(Configuration(cfg, reporter), hw.Board, opts...)
	if err != nil {
		hw.Close()
		return nil, nil, err
	}
	return task, hw, nil
}
