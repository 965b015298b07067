package link

import (
	"io"
	"log"
	"sync"

	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/report"
)

// Writer streams every completed cycle as a report line to an io.Writer, typically a
// serial port opened with OpenSerial.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	errors uint64
}

var (
	_ freqcount.Reporter      = (*Writer)(nil)
	_ freqcount.CycleObserver = (*Writer)(nil)
)

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WindowStart() {}

func (w *Writer) FrequencyUpdate(hz float64) {}

// CycleComplete writes the cycle. Write errors are logged and counted; the scheduler
// keeps running.
func (w *Writer) CycleComplete(c freqcount.Cycle) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.w, FormatLine(report.FromCycle(c))); err != nil {
		w.errors++
		log.Printf("Failed to write report line: %v", err)
	}
}

// Errors returns the number of failed writes.
func (w *Writer) Errors() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errors
}
