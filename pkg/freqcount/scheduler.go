package freqcount

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"
)

// State is the phase of the measurement cycle.
type State int32

const (
	Idle      State = iota // Waiting for the next sampling period
	Armed                  // Counter cleared, window start notified, gate armed
	Counting               // Gate open, edges accumulating
	Reporting              // Reading the counter and notifying the reporter
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Counting:
		return "counting"
	case Reporting:
		return "reporting"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// gateWaitSlack bounds the wait for a gate done signal beyond twice the window.
const gateWaitSlack = 100 * time.Millisecond

// Scheduler owns the gate generator and edge counter and runs the measurement loop.
// Nothing else may touch the two peripherals while it runs.
type Scheduler struct {
	cfg     Configuration
	limits  Limits
	plan    *GatePlan
	gate    GateGenerator
	counter EdgeCounter
	clock   Clock
	log     *log.Logger

	period    time.Duration
	maxCycles uint64

	state  atomic.Int32
	cycles atomic.Uint64
	wraps  atomic.Uint64
}

// New validates cfg, binds the peripherals of board and prepares a Scheduler.
// It returns a *ConfigurationError when cfg cannot be served; in that case no
// peripheral stays bound.
func New(cfg Configuration, board Board, opts ...Option) (*Scheduler, error) {
	o := options{
		clock:  SystemClock{},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	limits := board.Limits()
	if err := cfg.Validate(limits); err != nil {
		return nil, err
	}
	plan, err := PlanGate(cfg.SamplingWindowSeconds, cfg.GateClockDivisor, cfg.GateMaxBlocks, limits)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cfg:       cfg,
		limits:    limits,
		plan:      plan,
		clock:     o.clock,
		log:       o.logger,
		period:    cfg.period(),
		maxCycles: o.maxCycles,
	}
	if err := s.bind(board); err != nil {
		return nil, err
	}

	s.logSummary()
	return s, nil
}

// bind acquires both peripherals and checks the gate reaches the counter control input.
func (s *Scheduler) bind(board Board) error {
	gate, err := board.Gate(s.cfg.GateChannel, s.cfg.GatePin)
	if err != nil {
		return &ConfigurationError{Field: "gate_channel", Value: s.cfg.GateChannel, Reason: "cannot bind gate generator", Err: err}
	}

	counter, err := board.Counter(s.cfg.CounterUnit, s.cfg.CounterChannel)
	if err != nil {
		gate.Close()
		return &ConfigurationError{Field: "counter_unit", Value: s.cfg.CounterUnit, Reason: "cannot bind edge counter", Err: err}
	}

	if err := counter.Configure(s.cfg.InputPin, s.cfg.GatePin, s.cfg.FilterLength); err != nil {
		counter.Close()
		gate.Close()
		return &ConfigurationError{Field: "input_pin", Value: s.cfg.InputPin, Reason: "cannot configure edge counter", Err: err}
	}

	if wc, ok := board.(WiringChecker); ok {
		if err := wc.CheckGateWiring(s.cfg.GatePin); err != nil {
			counter.Close()
			gate.Close()
			return &ConfigurationError{Field: "gate_pin", Value: s.cfg.GatePin, Reason: "gate does not reach counter control input", Err: err}
		}
	}

	s.gate = gate
	s.counter = counter
	return nil
}

func (s *Scheduler) logSummary() {
	window := s.cfg.SamplingWindowSeconds
	s.log.Printf("freqcount: gate ch%d pin %d: %d ticks of %v in %d items (%d block(s))",
		s.cfg.GateChannel, s.cfg.GatePin, s.plan.Ticks, s.plan.TickPeriod, len(s.plan.Items), s.plan.Blocks)
	s.log.Printf("freqcount: counter unit %d ch%d pin %d: filter %d (%v, cutoff %s Hz), capacity %.1f Hz over %gs every %gs",
		s.cfg.CounterUnit, s.cfg.CounterChannel, s.cfg.InputPin,
		s.cfg.FilterLength, FilterWidth(s.cfg.FilterLength, s.limits),
		formatHz(FilterCutoffHz(s.cfg.FilterLength, s.limits)),
		MaxMeasurableHz(window, s.limits), window, s.cfg.SamplingPeriodSeconds)

	if s.cfg.MaxExpectedHz > 0 {
		expected := s.cfg.MaxExpectedHz * window
		if expected > float64(s.limits.CounterMax) {
			s.log.Printf("freqcount: overflow risk: %.1f Hz over %gs is %.0f counts, counter holds %d; counts will wrap",
				s.cfg.MaxExpectedHz, window, expected, s.limits.CounterMax)
		}
	}
}

func formatHz(hz float64) string {
	if math.IsInf(hz, 1) {
		return "unlimited"
	}
	return fmt.Sprintf("%.1f", hz)
}

// Plan returns the gate program computed for the sampling window.
func (s *Scheduler) Plan() *GatePlan {
	return s.plan
}

// State returns the current phase of the loop.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Cycles returns the number of cycles started so far.
func (s *Scheduler) Cycles() uint64 {
	return s.cycles.Load()
}

// Wraps returns how many reads came back negative, i.e. visibly wrapped.
func (s *Scheduler) Wraps() uint64 {
	return s.wraps.Load()
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
}

// Run executes measurement cycles until ctx is done or the WithMaxCycles limit is reached.
// Cycle starts are at least one sampling period apart; the first starts immediately.
func (s *Scheduler) Run(ctx context.Context) {
	var next time.Time
	first := true

	for {
		s.setState(Idle)
		if !first {
			if err := s.clock.Sleep(ctx, next.Sub(s.clock.Now())); err != nil {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		first = false

		next = s.clock.Now().Add(s.period)
		if err := s.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Printf("freqcount: cycle skipped: %v", err)
		}
		if s.maxCycles > 0 && s.cycles.Load() >= s.maxCycles {
			s.setState(Idle)
			return
		}
	}
}

// cycle runs Armed, Counting and Reporting for one window.
func (s *Scheduler) cycle(ctx context.Context) error {
	s.setState(Armed)
	index := s.cycles.Add(1) - 1

	if err := s.counter.Clear(); err != nil {
		return fmt.Errorf("clear counter: %w", err)
	}

	reporter := s.cfg.Reporter
	if reporter != nil {
		s.notify("window start", reporter.WindowStart)
	}

	start := s.clock.Now()
	if err := s.gate.Arm(s.plan); err != nil {
		return fmt.Errorf("arm gate: %w", err)
	}

	s.setState(Counting)
	if err := s.waitGate(ctx); err != nil {
		return fmt.Errorf("wait for gate: %w", err)
	}

	s.setState(Reporting)
	count, err := s.counter.ReadAndClear()
	if err != nil {
		return fmt.Errorf("read counter: %w", err)
	}
	if count < 0 {
		s.wraps.Add(1)
		s.log.Printf("freqcount: counter wrapped (raw %d): input above %.1f Hz for a %gs window",
			count, MaxMeasurableHz(s.cfg.SamplingWindowSeconds, s.limits), s.cfg.SamplingWindowSeconds)
	}

	hz := Frequency(count, s.cfg.SamplingWindowSeconds)
	if reporter != nil {
		s.notify("frequency update", func() { reporter.FrequencyUpdate(hz) })
		if obs, ok := reporter.(CycleObserver); ok {
			c := Cycle{Index: index, Start: start, Count: count, Hz: hz}
			s.notify("cycle complete", func() { obs.CycleComplete(c) })
		}
	}

	return nil
}

// waitGate blocks until the gate pulse is over.
func (s *Scheduler) waitGate(ctx context.Context) error {
	w, ok := s.gate.(GateWaiter)
	if !ok {
		return s.clock.Sleep(ctx, s.plan.Duration())
	}

	ctx, cancel := context.WithTimeout(ctx, 2*s.plan.Duration()+gateWaitSlack)
	defer cancel()
	return w.Wait(ctx)
}

// notify calls a reporter method and turns a panic into a log line.
func (s *Scheduler) notify(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Printf("freqcount: %s callback panicked: %v", what, r)
		}
	}()
	fn()
}

// Close releases both peripherals. The scheduler must not be running.
func (s *Scheduler) Close() error {
	var first error
	if s.gate != nil {
		if err := s.gate.Close(); err != nil {
			first = fmt.Errorf("close gate: %w", err)
		}
		s.gate = nil
	}
	if s.counter != nil {
		if err := s.counter.Close(); err != nil && first == nil {
			first = fmt.Errorf("close counter: %w", err)
		}
		s.counter = nil
	}
	return first
}
