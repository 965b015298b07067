package sim

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// Clock is a virtual clock. Sleep advances it instantly, so a scheduler driven by it
// runs as fast as the CPU allows while still seeing exact window and period timing.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

var _ freqcount.Clock = (*Clock)(nil)

// NewClock creates a virtual clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d unless ctx is already done.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}

// Advance moves the clock forward. Negative durations are ignored.
func (c *Clock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
