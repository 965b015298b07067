//go:build linux

package gpio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// Gate drives an output line high for the planned window using a software timer.
type Gate struct {
	board *Board
	line  *gpiocdev.Line
	pin   freqcount.Pin

	mu     sync.Mutex
	timer  *time.Timer
	done   chan struct{}
	closed bool
}

var (
	_ freqcount.GateGenerator = (*Gate)(nil)
	_ freqcount.GateWaiter    = (*Gate)(nil)
)

// Arm raises the gate and schedules its fall after plan.Duration().
func (g *Gate) Arm(plan *freqcount.GatePlan) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return fmt.Errorf("gate line %d closed", g.pin)
	}
	if g.done != nil {
		select {
		case <-g.done:
		default:
			return freqcount.ErrGateBusy
		}
	}

	done := make(chan struct{})
	if err := g.line.SetValue(1); err != nil {
		return fmt.Errorf("failed to raise gate line %d: %w", g.pin, err)
	}
	g.done = done
	g.timer = time.AfterFunc(plan.Duration(), func() {
		if err := g.line.SetValue(0); err != nil {
			log.Printf("Failed to lower gate line %d: %v", g.pin, err)
		}
		close(done)
	})
	return nil
}

// Wait blocks until the gate has fallen.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops a pending pulse, drives the line low and releases it.
func (g *Gate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	if g.timer != nil {
		g.timer.Stop()
	}
	g.line.SetValue(0)
	g.board.release(g, nil)
	return g.line.Close()
}
