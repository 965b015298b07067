//go:build linux

package gpio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// settle is how long the wiring check waits for the readback line to follow the gate.
const settle = time.Millisecond

// Board is a freqcount.Board on a GPIO chip.
type Board struct {
	opts   Options
	chip   *gpiocdev.Chip
	limits freqcount.Limits

	mu      sync.Mutex
	gate    *Gate
	counter *Counter
}

var (
	_ freqcount.Board         = (*Board)(nil)
	_ freqcount.WiringChecker = (*Board)(nil)
)

// Open opens the chip named in opts.
func Open(opts Options) (*Board, error) {
	chip, err := gpiocdev.NewChip(opts.Chip, gpiocdev.WithConsumer(opts.Consumer))
	if err != nil {
		return nil, fmt.Errorf("failed to open GPIO chip %s: %w", opts.Chip, err)
	}
	if opts.ControlLine < 0 || opts.ControlLine >= chip.Lines() {
		chip.Close()
		return nil, fmt.Errorf("control line %d not on %s (%d lines)", opts.ControlLine, opts.Chip, chip.Lines())
	}

	return &Board{
		opts:   opts,
		chip:   chip,
		limits: opts.Limits(chip.Lines()),
	}, nil
}

// Close closes the chip. Bound peripherals must be closed first.
func (b *Board) Close() error {
	return b.chip.Close()
}

func (b *Board) Limits() freqcount.Limits {
	return b.limits
}

// Gate requests pin as an output driven low.
func (b *Board) Gate(channel int, pin freqcount.Pin) (freqcount.GateGenerator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if channel != 0 {
		return nil, fmt.Errorf("gate channel %d does not exist", channel)
	}
	if b.gate != nil {
		return nil, fmt.Errorf("gate channel %d already in use", channel)
	}

	l, err := b.chip.RequestLine(int(pin), gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("failed to request gate line %d: %w", pin, err)
	}

	b.gate = &Gate{board: b, line: l, pin: pin}
	return b.gate, nil
}

// Counter reserves the counter. Lines are requested by Configure.
func (b *Board) Counter(unit, channel int) (freqcount.EdgeCounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if unit != 0 || channel != 0 {
		return nil, fmt.Errorf("counter unit %d channel %d does not exist", unit, channel)
	}
	if b.counter != nil {
		return nil, fmt.Errorf("counter unit %d channel %d already in use", unit, channel)
	}

	b.counter = &Counter{board: b}
	return b.counter, nil
}

// CheckGateWiring toggles the gate and expects the control line to follow.
func (b *Board) CheckGateWiring(pin freqcount.Pin) error {
	b.mu.Lock()
	g, c := b.gate, b.counter
	b.mu.Unlock()

	if g == nil || g.pin != pin {
		return fmt.Errorf("no gate drives pin %d", pin)
	}
	if c == nil || c.control == nil {
		return fmt.Errorf("counter control line %d not requested", b.opts.ControlLine)
	}

	for _, level := range []int{1, 0} {
		if err := g.line.SetValue(level); err != nil {
			return fmt.Errorf("failed to drive gate line %d: %w", pin, err)
		}
		time.Sleep(settle)

		v, err := c.control.Value()
		if err != nil {
			return fmt.Errorf("failed to read control line %d: %w", b.opts.ControlLine, err)
		}
		if v != level {
			g.line.SetValue(0)
			return fmt.Errorf("control line %d reads %d with gate pin %d at %d", b.opts.ControlLine, v, pin, level)
		}
	}

	// The toggle produced control edges; start from an empty register
	c.count.Store(0)
	log.Printf("Gate pin %d reaches control line %d", pin, b.opts.ControlLine)
	return nil
}

func (b *Board) release(g *Gate, c *Counter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g != nil && b.gate == g {
		b.gate = nil
	}
	if c != nil && b.counter == c {
		b.counter = nil
	}
}
