//go:build tinygo

package main

import (
	"context"
	"errors"
	"machine"
	"sync/atomic"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// mcuLimits keeps the ESP32 gate and register sizes so a Configuration means the same
// thing on every board; there is one software gate and one pin-interrupt counter.
func mcuLimits() freqcount.Limits {
	l := freqcount.ESP32Limits()
	l.NumPins = 256
	l.InputOnlyPins = nil
	l.GateChannels = 1
	l.CounterUnits = 1
	l.CounterChannels = 1
	return l
}

// mcuBoard drives the gate from a timer goroutine and counts edges in a pin interrupt.
type mcuBoard struct {
	limits  freqcount.Limits
	gate    *mcuGate
	counter *mcuCounter
}

func (b *mcuBoard) Limits() freqcount.Limits {
	return b.limits
}

func (b *mcuBoard) Gate(channel int, pin freqcount.Pin) (freqcount.GateGenerator, error) {
	if b.gate != nil {
		return nil, errors.New("gate in use")
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	b.gate = &mcuGate{board: b, pin: p}
	return b.gate, nil
}

func (b *mcuBoard) Counter(unit, channel int) (freqcount.EdgeCounter, error) {
	if b.counter != nil {
		return nil, errors.New("counter in use")
	}
	b.counter = &mcuCounter{board: b}
	return b.counter, nil
}

type mcuGate struct {
	board *mcuBoard
	pin   machine.Pin
	done  chan struct{}
}

func (g *mcuGate) Arm(plan *freqcount.GatePlan) error {
	if g.done != nil {
		select {
		case <-g.done:
		default:
			return freqcount.ErrGateBusy
		}
	}

	done := make(chan struct{})
	g.done = done
	g.pin.High()
	go func() {
		time.Sleep(plan.Duration())
		g.pin.Low()
		close(done)
	}()
	return nil
}

func (g *mcuGate) Wait(ctx context.Context) error {
	if g.done == nil {
		return nil
	}
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *mcuGate) Close() error {
	g.pin.Low()
	g.board.gate = nil
	return nil
}

// mcuCounter counts rising edges while the control pin reads high. Edges closer than
// two filter widths to the previous one are rejected.
type mcuCounter struct {
	board   *mcuBoard
	input   machine.Pin
	control machine.Pin
	minGap  int64 // Nanoseconds
	last    int64
	count   atomic.Int32
}

func (c *mcuCounter) Configure(input, control freqcount.Pin, filterLength int) error {
	c.input = machine.Pin(input)
	c.control = machine.Pin(control)
	c.minGap = 2 * int64(freqcount.FilterWidth(filterLength, c.board.limits))

	c.input.Configure(machine.PinConfig{Mode: machine.PinInput})
	c.count.Store(0)
	return c.input.SetInterrupt(machine.PinRising, c.edge)
}

func (c *mcuCounter) edge(machine.Pin) {
	if !c.control.Get() {
		return
	}
	if c.minGap > 0 {
		now := time.Now().UnixNano()
		if now-c.last < c.minGap {
			return
		}
		c.last = now
	}
	c.count.Add(1)
}

func (c *mcuCounter) Clear() error {
	c.count.Store(0)
	return nil
}

func (c *mcuCounter) ReadAndClear() (int16, error) {
	return freqcount.WrapCount(int64(c.count.Swap(0))), nil
}

func (c *mcuCounter) Close() error {
	c.input.SetInterrupt(0, nil)
	c.board.counter = nil
	return nil
}
