package freqcount

import "time"

// Reporter receives the two per-cycle notifications of the scheduler.
// Both methods run on the scheduler goroutine and must return promptly; a blocked
// reporter stalls every following cycle.
type Reporter interface {
	// WindowStart is called once per cycle just before the gate opens.
	WindowStart()

	// FrequencyUpdate is called once per cycle after the gate closed, with the
	// measured frequency (0 when no edges were counted).
	FrequencyUpdate(hz float64)
}

// CycleObserver may be implemented by a Reporter that also wants the raw cycle data.
// CycleComplete is called right after FrequencyUpdate.
type CycleObserver interface {
	CycleComplete(c Cycle)
}

// Cycle is one measurement window. It is handed out once and not retained.
type Cycle struct {
	Index uint64    // Sequence number, starting at 0
	Start time.Time // Gate-open time
	Count int16     // Raw counter register
	Hz    float64   // Count divided by the sampling window
}

// ReporterFuncs adapts two closures to Reporter. Nil closures are skipped.
type ReporterFuncs struct {
	OnWindowStart func()
	OnFrequency   func(hz float64)
}

var _ Reporter = ReporterFuncs{}

func (f ReporterFuncs) WindowStart() {
	if f.OnWindowStart != nil {
		f.OnWindowStart()
	}
}

func (f ReporterFuncs) FrequencyUpdate(hz float64) {
	if f.OnFrequency != nil {
		f.OnFrequency(hz)
	}
}

// MultiReporter fans notifications out to several reporters in order.
type MultiReporter []Reporter

var (
	_ Reporter      = MultiReporter(nil)
	_ CycleObserver = MultiReporter(nil)
)

func (m MultiReporter) WindowStart() {
	for _, r := range m {
		if r != nil {
			r.WindowStart()
		}
	}
}

func (m MultiReporter) FrequencyUpdate(hz float64) {
	for _, r := range m {
		if r != nil {
			r.FrequencyUpdate(hz)
		}
	}
}

func (m MultiReporter) CycleComplete(c Cycle) {
	for _, r := range m {
		if o, ok := r.(CycleObserver); ok {
			o.CycleComplete(c)
		}
	}
}
