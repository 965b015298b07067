package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// Board simulates an MCU with a gate generator and an edge counter.
//
// Gate outputs record their high intervals on the pin they drive. A counter whose
// control input is that pin counts the rising edges of its input Signal inside those
// intervals. Counting is computed from the signal definition, so results only depend
// on the clock and are exact under a virtual Clock.
type Board struct {
	limits freqcount.Limits
	clock  freqcount.Clock
	epoch  time.Time

	mu       sync.Mutex
	signals  map[freqcount.Pin]Signal
	lines    map[freqcount.Pin]*line
	cut      map[freqcount.Pin]bool
	gates    map[int]*Gate
	counters map[[2]int]*Counter
	outputs  map[freqcount.Pin]int // Gate pin -> channel
}

// line is the level history of a gate-driven pin.
type line struct {
	high []interval
}

type interval struct {
	from, to time.Time
}

var (
	_ freqcount.Board         = (*Board)(nil)
	_ freqcount.WiringChecker = (*Board)(nil)
)

// New creates a board with ESP32 limits driven by clock. A nil clock uses the wall clock.
func New(clock freqcount.Clock) *Board {
	return NewWithLimits(clock, freqcount.ESP32Limits())
}

// NewWithLimits creates a board with custom hardware limits.
func NewWithLimits(clock freqcount.Clock, limits freqcount.Limits) *Board {
	if clock == nil {
		clock = freqcount.SystemClock{}
	}
	return &Board{
		limits:   limits,
		clock:    clock,
		epoch:    clock.Now(),
		signals:  make(map[freqcount.Pin]Signal),
		lines:    make(map[freqcount.Pin]*line),
		cut:      make(map[freqcount.Pin]bool),
		gates:    make(map[int]*Gate),
		counters: make(map[[2]int]*Counter),
		outputs:  make(map[freqcount.Pin]int),
	}
}

// Limits returns the simulated hardware limits.
func (b *Board) Limits() freqcount.Limits {
	return b.limits
}

// Attach drives pin with signal. It may be called while counting.
func (b *Board) Attach(pin freqcount.Pin, signal Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals[pin] = signal
}

// Cut severs the trace between a gate pin and the counter control input.
func (b *Board) Cut(pin freqcount.Pin) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cut[pin] = true
}

// Bound returns how many peripherals are currently bound.
func (b *Board) Bound() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.gates) + len(b.counters)
}

// CheckGateWiring verifies that a gate drives pin and the trace to the control input is intact.
func (b *Board) CheckGateWiring(pin freqcount.Pin) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.outputs[pin]; !ok {
		return fmt.Errorf("no gate drives pin %d", pin)
	}
	if b.cut[pin] {
		return fmt.Errorf("no continuity from gate pin %d to counter control", pin)
	}
	return nil
}

// Gate binds a gate generator channel to pin.
func (b *Board) Gate(channel int, pin freqcount.Pin) (freqcount.GateGenerator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if channel < 0 || channel >= b.limits.GateChannels {
		return nil, fmt.Errorf("gate channel %d does not exist", channel)
	}
	if _, ok := b.gates[channel]; ok {
		return nil, fmt.Errorf("gate channel %d already in use", channel)
	}
	if other, ok := b.outputs[pin]; ok {
		return nil, fmt.Errorf("pin %d already driven by gate channel %d", pin, other)
	}

	g := &Gate{board: b, channel: channel, pin: pin}
	b.gates[channel] = g
	b.outputs[pin] = channel
	b.lines[pin] = &line{}
	return g, nil
}

// Counter binds an edge counter unit/channel.
func (b *Board) Counter(unit, channel int) (freqcount.EdgeCounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if unit < 0 || unit >= b.limits.CounterUnits {
		return nil, fmt.Errorf("counter unit %d does not exist", unit)
	}
	if channel < 0 || channel >= b.limits.CounterChannels {
		return nil, fmt.Errorf("counter channel %d does not exist", channel)
	}
	key := [2]int{unit, channel}
	if _, ok := b.counters[key]; ok {
		return nil, fmt.Errorf("counter unit %d channel %d already in use", unit, channel)
	}

	c := &Counter{board: b, key: key}
	b.counters[key] = c
	return c, nil
}

func (b *Board) seconds(t time.Time) float64 {
	return t.Sub(b.epoch).Seconds()
}

// Gate is a simulated gate generator channel.
type Gate struct {
	board   *Board
	channel int
	pin     freqcount.Pin
	until   time.Time // End of the pulse in flight
	closed  bool
}

var (
	_ freqcount.GateGenerator = (*Gate)(nil)
	_ freqcount.GateWaiter    = (*Gate)(nil)
)

// Arm records one gate pulse starting now.
func (g *Gate) Arm(plan *freqcount.GatePlan) error {
	b := g.board
	b.mu.Lock()
	defer b.mu.Unlock()

	if g.closed {
		return fmt.Errorf("gate channel %d closed", g.channel)
	}
	now := b.clock.Now()
	if now.Before(g.until) {
		return freqcount.ErrGateBusy
	}

	g.until = now.Add(plan.Duration())
	l := b.lines[g.pin]
	l.high = append(l.high, interval{from: now, to: g.until})
	return nil
}

// Wait sleeps on the board clock until the pulse is over.
func (g *Gate) Wait(ctx context.Context) error {
	b := g.board
	b.mu.Lock()
	remaining := g.until.Sub(b.clock.Now())
	b.mu.Unlock()

	return b.clock.Sleep(ctx, remaining)
}

// Close releases the channel and its pin. The pin forgets its level history, so a
// pulse in flight stops counting.
func (g *Gate) Close() error {
	b := g.board
	b.mu.Lock()
	defer b.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	delete(b.gates, g.channel)
	delete(b.outputs, g.pin)
	delete(b.lines, g.pin)
	return nil
}

// Counter is a simulated edge counter unit/channel with a signed 16-bit register.
type Counter struct {
	board      *Board
	key        [2]int
	input      freqcount.Pin
	control    freqcount.Pin
	filter     float64 // Seconds
	configured bool
	since      time.Time // Last clear
	closed     bool
}

var _ freqcount.EdgeCounter = (*Counter)(nil)

// Configure routes the pins, installs the filter and clears the register.
func (c *Counter) Configure(input, control freqcount.Pin, filterLength int) error {
	b := c.board
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.closed {
		return fmt.Errorf("counter unit %d closed", c.key[0])
	}
	if filterLength < 0 || filterLength > b.limits.MaxFilterLength {
		return fmt.Errorf("filter length %d out of range [0, %d]", filterLength, b.limits.MaxFilterLength)
	}
	if _, ok := b.outputs[input]; ok {
		return fmt.Errorf("input pin %d is driven by a gate", input)
	}

	c.input = input
	c.control = control
	c.filter = freqcount.FilterWidth(filterLength, b.limits).Seconds()
	c.configured = true
	c.since = b.clock.Now()
	return nil
}

// Clear resets the register.
func (c *Counter) Clear() error {
	b := c.board
	b.mu.Lock()
	defer b.mu.Unlock()

	if !c.configured || c.closed {
		return fmt.Errorf("counter unit %d not configured", c.key[0])
	}
	c.since = b.clock.Now()
	c.prune()
	return nil
}

// ReadAndClear returns the edges counted since the last clear while control was high.
func (c *Counter) ReadAndClear() (int16, error) {
	b := c.board
	b.mu.Lock()
	defer b.mu.Unlock()

	if !c.configured || c.closed {
		return 0, fmt.Errorf("counter unit %d not configured", c.key[0])
	}

	now := b.clock.Now()
	var edges int64
	if l, ok := b.lines[c.control]; ok && !b.cut[c.control] {
		signal := b.signals[c.input]
		for _, iv := range l.high {
			from := later(iv.from, c.since)
			to := earlier(iv.to, now)
			if !to.After(from) {
				continue
			}
			edges += signal.RisingEdges(b.seconds(from), b.seconds(to), c.filter)
		}
	}

	c.since = now
	c.prune()
	return freqcount.WrapCount(edges), nil
}

// prune drops gate intervals that can no longer contribute. Caller holds b.mu.
func (c *Counter) prune() {
	l, ok := c.board.lines[c.control]
	if !ok {
		return
	}
	kept := l.high[:0]
	for _, iv := range l.high {
		if iv.to.After(c.since) {
			kept = append(kept, iv)
		}
	}
	l.high = kept
}

// Close releases the unit.
func (c *Counter) Close() error {
	b := c.board
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	delete(b.counters, c.key)
	return nil
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
