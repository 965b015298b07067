package sim

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func plan(t *testing.T, window float64) *freqcount.GatePlan {
	t.Helper()
	p, err := freqcount.PlanGate(window, 160, 2, freqcount.ESP32Limits())
	require.NoError(t, err)
	return p
}

func bindPair(t *testing.T, b *Board, filter int) (freqcount.GateGenerator, freqcount.EdgeCounter) {
	t.Helper()
	g, err := b.Gate(0, 12)
	require.NoError(t, err)
	c, err := b.Counter(0, 0)
	require.NoError(t, err)
	require.NoError(t, c.Configure(4, 12, filter))
	require.NoError(t, b.CheckGateWiring(12))
	return g, c
}

func TestBoard_CountsOnlyWhileGateHigh(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	b.Attach(4, Signal{FrequencyHz: 1000})
	g, c := bindPair(t, b, 0)

	// Edges before the gate opens are held
	clock.Advance(500 * time.Millisecond)
	n, err := c.ReadAndClear()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, g.Arm(plan(t, 0.25)))
	require.NoError(t, g.(freqcount.GateWaiter).Wait(context.Background()))

	// Edges after the gate closed are held too
	clock.Advance(time.Second)
	n, err = c.ReadAndClear()
	require.NoError(t, err)
	assert.Equal(t, int16(250), n)

	n, err = c.ReadAndClear()
	require.NoError(t, err)
	assert.Zero(t, n, "read clears the register")
}

func TestBoard_ClearDropsPartialWindow(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	b.Attach(4, Signal{FrequencyHz: 1000})
	g, c := bindPair(t, b, 0)

	require.NoError(t, g.Arm(plan(t, 1)))
	clock.Advance(400 * time.Millisecond)
	require.NoError(t, c.Clear())
	clock.Advance(600 * time.Millisecond)

	n, err := c.ReadAndClear()
	require.NoError(t, err)
	assert.Equal(t, int16(600), n)
}

func TestBoard_RebindGateForgetsHistory(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	b.Attach(4, Signal{FrequencyHz: 1000})
	g, c := bindPair(t, b, 0)

	require.NoError(t, g.Arm(plan(t, 0.25)))
	require.NoError(t, g.(freqcount.GateWaiter).Wait(context.Background()))
	require.NoError(t, g.Close())

	_, err := b.Gate(0, 12)
	require.NoError(t, err)

	n, err := c.ReadAndClear()
	require.NoError(t, err)
	assert.Zero(t, n, "pulses of the released gate must not count")
}

func TestBoard_GateBusy(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	g, _ := bindPair(t, b, 0)

	require.NoError(t, g.Arm(plan(t, 1)))
	clock.Advance(500 * time.Millisecond)
	assert.ErrorIs(t, g.Arm(plan(t, 1)), freqcount.ErrGateBusy)

	clock.Advance(500 * time.Millisecond)
	assert.NoError(t, g.Arm(plan(t, 1)))
}

func TestBoard_Wraps(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	b.Attach(4, Signal{FrequencyHz: 40_000})
	g, c := bindPair(t, b, 0)

	require.NoError(t, g.Arm(plan(t, 1)))
	clock.Advance(time.Second)

	n, err := c.ReadAndClear()
	require.NoError(t, err)
	assert.Equal(t, int16(-25536), n)
}

func TestBoard_Filter(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	// Above the 39.1 kHz cutoff of the longest filter
	b.Attach(4, Signal{FrequencyHz: 40_000})
	g, c := bindPair(t, b, 1023)

	require.NoError(t, g.Arm(plan(t, 0.1)))
	clock.Advance(100 * time.Millisecond)

	n, err := c.ReadAndClear()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBoard_BindErrors(t *testing.T) {
	b := New(NewClock(epoch))

	_, err := b.Gate(8, 12)
	assert.Error(t, err)
	_, err = b.Counter(8, 0)
	assert.Error(t, err)
	_, err = b.Counter(0, 2)
	assert.Error(t, err)

	g, err := b.Gate(0, 12)
	require.NoError(t, err)
	_, err = b.Gate(0, 13)
	assert.ErrorContains(t, err, "already in use")
	_, err = b.Gate(1, 12)
	assert.ErrorContains(t, err, "already driven")

	c, err := b.Counter(0, 0)
	require.NoError(t, err)
	_, err = b.Counter(0, 0)
	assert.ErrorContains(t, err, "already in use")

	assert.Error(t, c.Configure(4, 12, 1024), "filter out of range")
	assert.Error(t, c.Configure(12, 12, 0), "input driven by the gate")
	assert.Error(t, c.Clear(), "not configured yet")

	assert.Equal(t, 2, b.Bound())
	require.NoError(t, g.Close())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Zero(t, b.Bound())

	assert.Error(t, g.Arm(plan(t, 1)), "closed gate")
	_, err = c.ReadAndClear()
	assert.Error(t, err, "closed counter")
}

func TestBoard_Wiring(t *testing.T) {
	clock := NewClock(epoch)
	b := New(clock)
	b.Attach(4, Signal{FrequencyHz: 1000})

	assert.ErrorContains(t, b.CheckGateWiring(12), "no gate drives")

	g, c := bindPair(t, b, 0)
	b.Cut(12)
	assert.ErrorContains(t, b.CheckGateWiring(12), "continuity")

	// With the trace cut the control input never sees the gate
	require.NoError(t, g.Arm(plan(t, 1)))
	clock.Advance(time.Second)
	n, err := c.ReadAndClear()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClock(t *testing.T) {
	c := NewClock(epoch)
	require.NoError(t, c.Sleep(context.Background(), time.Second))
	assert.Equal(t, epoch.Add(time.Second), c.Now())

	c.Advance(-time.Second)
	assert.Equal(t, epoch.Add(time.Second), c.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Second), context.Canceled)
	assert.Equal(t, epoch.Add(time.Second), c.Now())
}
