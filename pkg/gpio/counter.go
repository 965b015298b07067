//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// Counter counts rising edge events of the input line while the control line is high.
type Counter struct {
	board *Board

	mu      sync.Mutex
	input   *gpiocdev.Line
	control *gpiocdev.Line
	closed  bool

	enabled atomic.Bool
	count   atomic.Int64
}

var _ freqcount.EdgeCounter = (*Counter)(nil)

// Configure requests the input line with a debounce matching filterLength and the
// control readback line. The control pin itself is the gate output; its level is
// observed on Options.ControlLine.
func (c *Counter) Configure(input, control freqcount.Pin, filterLength int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("counter closed")
	}
	if c.input != nil {
		return errors.New("counter already configured")
	}

	b := c.board
	if filterLength < 0 || filterLength > b.limits.MaxFilterLength {
		return fmt.Errorf("filter length %d out of range [0, %d]", filterLength, b.limits.MaxFilterLength)
	}

	ctrl, err := b.chip.RequestLine(b.opts.ControlLine,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(c.controlEvent))
	if err != nil {
		return fmt.Errorf("failed to request control line %d for gate pin %d: %w", b.opts.ControlLine, control, err)
	}
	level, err := ctrl.Value()
	if err != nil {
		ctrl.Close()
		return fmt.Errorf("failed to read control line %d: %w", b.opts.ControlLine, err)
	}
	c.enabled.Store(level == 1)

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(c.inputEvent),
	}
	if width := freqcount.FilterWidth(filterLength, b.limits); width > 0 {
		opts = append(opts, gpiocdev.WithDebounce(width))
	}
	in, err := b.chip.RequestLine(int(input), opts...)
	if err != nil {
		ctrl.Close()
		return fmt.Errorf("failed to request input line %d: %w", input, err)
	}

	c.control = ctrl
	c.input = in
	c.count.Store(0)
	return nil
}

func (c *Counter) controlEvent(evt gpiocdev.LineEvent) {
	c.enabled.Store(evt.Type == gpiocdev.LineEventRisingEdge)
}

func (c *Counter) inputEvent(evt gpiocdev.LineEvent) {
	if evt.Type == gpiocdev.LineEventRisingEdge && c.enabled.Load() {
		c.count.Add(1)
	}
}

// Clear resets the count.
func (c *Counter) Clear() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.count.Store(0)
	return nil
}

// ReadAndClear returns the count truncated to the 16-bit register width.
func (c *Counter) ReadAndClear() (int16, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	return freqcount.WrapCount(c.count.Swap(0)), nil
}

func (c *Counter) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.input == nil {
		return errors.New("counter not configured")
	}
	return nil
}

// Close releases both lines.
func (c *Counter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.board.release(nil, c)

	var first error
	for _, l := range []*gpiocdev.Line{c.input, c.control} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
