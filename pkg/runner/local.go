package runner

import (
	"fmt"
	"log"
	"sync"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/link"
	"github.com/itohio/gofreq/pkg/report"
)

// Local runs the counter in this process and exposes it as a link.Source, so front
// ends treat a local board and a remote one the same way.
type Local struct {
	cfg   *config.Config
	extra []freqcount.Reporter
	opts  []freqcount.Option

	reports *report.ChannelReporter

	mu        sync.RWMutex
	task      *freqcount.Task
	hw        *Hardware
	connected bool
	closed    bool
}

var _ link.Source = (*Local)(nil)

// NewLocal creates a local source. extra reporters receive every notification too,
// e.g. a link.Writer mirroring reports to a serial port.
func NewLocal(cfg *config.Config, bufSize int, extra ...freqcount.Reporter) *Local {
	return &Local{
		cfg:     cfg,
		extra:   extra,
		reports: report.NewChannelReporter(bufSize),
	}
}

// WithOptions adds scheduler options used by Connect.
func (l *Local) WithOptions(opts ...freqcount.Option) *Local {
	l.opts = append(l.opts, opts...)
	return l
}

// Connect opens the backend and starts measuring.
func (l *Local) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected {
		return fmt.Errorf("already connected")
	}
	if l.closed {
		return fmt.Errorf("source closed")
	}

	reporter := append(freqcount.MultiReporter{l.reports}, l.extra...)
	task, hw, err := Start(l.cfg, reporter, l.opts...)
	if err != nil {
		return err
	}

	l.task = task
	l.hw = hw
	l.connected = true
	return nil
}

// Close stops the counter, releases the board and closes the reports channel.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		return nil
	}

	err := l.task.Stop()
	if cerr := l.hw.Close(); cerr != nil {
		log.Printf("Error closing board: %v", cerr)
	}
	l.connected = false
	l.closed = true
	l.reports.Close()

	return err
}

// Reports returns the report stream.
func (l *Local) Reports() <-chan report.Report {
	return l.reports.Reports()
}

// IsConnected returns whether the counter is running.
func (l *Local) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// Done is closed when a running counter finishes on its own, e.g. after
// freqcount.WithMaxCycles. It returns nil when not connected.
func (l *Local) Done() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.task == nil {
		return nil
	}
	return l.task.Done()
}
