package freqcount

import (
	"math"
	"time"
)

// PeriodsPerItem is the number of timed periods packed in one gate item.
const PeriodsPerItem = 2

// GateItem is one gate memory item: two timed periods at the given levels.
// An item with a zero first duration terminates the pulse.
type GateItem struct {
	Level0    bool
	Duration0 uint16
	Level1    bool
	Duration1 uint16
}

// Ticks returns the total duration of the item in gate ticks.
func (it GateItem) Ticks() int {
	return int(it.Duration0) + int(it.Duration1)
}

// IsEnd reports whether the item is the end marker.
func (it GateItem) IsEnd() bool {
	return it.Duration0 == 0
}

// GatePlan is the precomputed pulse program for one sampling window.
type GatePlan struct {
	Ticks      int           // Total gate-open ticks
	TickPeriod time.Duration // Duration of one tick, rounded to ns; Duration uses the exact value
	Items      []GateItem    // Items including the end marker
	Blocks     int           // Memory blocks used

	tickSeconds float64
}

// Duration returns the gate-open time synthesized by the plan.
func (p *GatePlan) Duration() time.Duration {
	return time.Duration(math.Round(float64(p.Ticks) * p.tickSeconds * float64(time.Second)))
}

// Seconds returns the gate-open time in seconds.
func (p *GatePlan) Seconds() float64 {
	return float64(p.Ticks) * p.tickSeconds
}

// PlanGate computes how many items and blocks the gate generator needs for a window.
//
// The window is quantized to ticks of clockDivisor/BaseClockHz seconds. Each item holds
// PeriodsPerItem high periods of at most MaxTicksPerPeriod ticks; the final item may be
// partial and one end marker returns the gate low. The plan fails when the items do not
// fit into maxBlocks memory blocks.
func PlanGate(windowSeconds float64, clockDivisor, maxBlocks int, limits Limits) (*GatePlan, error) {
	if !(windowSeconds > 0) || math.IsInf(windowSeconds, 0) {
		return nil, configError("sampling_window_seconds", windowSeconds, "must be a positive finite duration")
	}
	if clockDivisor < 1 || clockDivisor > limits.MaxClockDivisor {
		return nil, configError("gate_clock_divisor", clockDivisor, "must be in [1, %d]", limits.MaxClockDivisor)
	}
	if maxBlocks < 1 || maxBlocks > limits.MaxBlocks {
		return nil, configError("gate_max_blocks", maxBlocks, "must be in [1, %d]", limits.MaxBlocks)
	}

	tickSeconds := float64(clockDivisor) / limits.BaseClockHz
	ticksF := math.Round(windowSeconds / tickSeconds)
	if ticksF < 1 {
		return nil, configError("sampling_window_seconds", windowSeconds,
			"shorter than one gate tick (%g s)", tickSeconds)
	}

	perItem := float64(PeriodsPerItem * limits.MaxTicksPerPeriod)
	itemsF := math.Ceil(ticksF/perItem) + 1
	capacity := maxBlocks * limits.ItemsPerBlock
	// Compared as float: a huge window would overflow int.
	if itemsF > float64(capacity) {
		maxWindow := float64(capacity-1) * perItem * tickSeconds
		return nil, configError("sampling_window_seconds", windowSeconds,
			"needs %.0f gate items but %d block(s) hold %d (longest window %.6g s at divisor %d)",
			itemsF, maxBlocks, capacity, maxWindow, clockDivisor)
	}
	items := int(itemsF)
	ticks := int(ticksF)

	plan := &GatePlan{
		Ticks:       ticks,
		TickPeriod:  time.Duration(math.Round(tickSeconds * float64(time.Second))),
		Items:       make([]GateItem, 0, items),
		Blocks:      (items + limits.ItemsPerBlock - 1) / limits.ItemsPerBlock,
		tickSeconds: tickSeconds,
	}

	remaining := ticks
	for remaining > 0 {
		d0 := min(remaining, limits.MaxTicksPerPeriod)
		remaining -= d0
		d1 := min(remaining, limits.MaxTicksPerPeriod)
		remaining -= d1
		plan.Items = append(plan.Items, GateItem{
			Level0:    true,
			Duration0: uint16(d0),
			Level1:    true,
			Duration1: uint16(d1),
		})
	}
	plan.Items = append(plan.Items, GateItem{})

	return plan, nil
}
