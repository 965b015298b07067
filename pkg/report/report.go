package report

import (
	"log"
	"sync"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
)

// DefaultBufferSize is the default size of a ChannelReporter buffer.
const DefaultBufferSize = 16

// Report is one measured window as seen by consumers.
type Report struct {
	Timestamp time.Time // Gate-open time
	Cycle     uint64    // Cycle sequence number
	Count     int16     // Raw counter register
	Hz        float64   // Measured frequency
}

// FromCycle converts scheduler cycle data into a Report.
func FromCycle(c freqcount.Cycle) Report {
	return Report{
		Timestamp: c.Start,
		Cycle:     c.Index,
		Count:     c.Count,
		Hz:        c.Hz,
	}
}

// ChannelReporter turns scheduler notifications into a stream of Reports.
// Sends never block the scheduler: when the buffer is full the report is dropped.
type ChannelReporter struct {
	out     chan Report
	mu      sync.Mutex
	closed  bool
	dropped uint64
}

var (
	_ freqcount.Reporter      = (*ChannelReporter)(nil)
	_ freqcount.CycleObserver = (*ChannelReporter)(nil)
)

// NewChannelReporter creates a reporter with a buffer of bufSize reports.
func NewChannelReporter(bufSize int) *ChannelReporter {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &ChannelReporter{out: make(chan Report, bufSize)}
}

// Reports returns the report stream. It is closed by Close.
func (r *ChannelReporter) Reports() <-chan Report {
	return r.out
}

// WindowStart is a no-op; reports are emitted once the cycle completes.
func (r *ChannelReporter) WindowStart() {}

// FrequencyUpdate is a no-op; the full cycle arrives through CycleComplete.
func (r *ChannelReporter) FrequencyUpdate(hz float64) {}

// CycleComplete queues the cycle as a Report.
func (r *ChannelReporter) CycleComplete(c freqcount.Cycle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	select {
	case r.out <- FromCycle(c):
	default:
		r.dropped++
		log.Printf("Report channel full, dropping cycle %d", c.Index)
	}
}

// Dropped returns how many reports were discarded because the buffer was full.
func (r *ChannelReporter) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close closes the report stream. Later cycles are ignored.
func (r *ChannelReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	close(r.out)
}

// LogReporter logs every window start and frequency.
type LogReporter struct {
	Logger *log.Logger // nil uses the standard logger
}

var _ freqcount.Reporter = LogReporter{}

func (l LogReporter) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l LogReporter) WindowStart() {
	l.logger().Printf("Begin sampling")
}

func (l LogReporter) FrequencyUpdate(hz float64) {
	l.logger().Printf("Frequency %s (%.3f Hz)", FormatHz(hz), hz)
}
