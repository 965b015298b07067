package freqcount

import (
	"context"
	"log"
	"sync"
)

// Option customizes New and Start.
type Option func(*options)

type options struct {
	clock     Clock
	logger    *log.Logger
	maxCycles uint64
}

// WithClock replaces the wall clock, e.g. with a simulated one.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sends scheduler log lines to l instead of the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxCycles ends the loop after n cycles. Zero runs until stopped.
func WithMaxCycles(n uint64) Option {
	return func(o *options) {
		o.maxCycles = n
	}
}

// Task is the handle of a running measurement loop.
type Task struct {
	sched  *Scheduler
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

// Start takes ownership of cfg, binds the peripherals of board and runs the
// measurement loop on its own goroutine. It returns immediately.
// Configuration problems are returned here and no goroutine is started.
func Start(cfg Configuration, board Board, opts ...Option) (*Task, error) {
	sched, err := New(cfg, board, opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		sched:  sched,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		sched.Run(ctx)
		t.err = sched.Close()
	}()

	return t, nil
}

// Stop ends the loop at its next suspension point, waits for it and releases the
// peripherals. It is safe to call more than once.
func (t *Task) Stop() error {
	t.once.Do(t.cancel)
	<-t.done
	return t.err
}

// Done is closed once the loop has exited and the peripherals are released.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// State returns the current phase of the loop.
func (t *Task) State() State {
	return t.sched.State()
}

// Cycles returns the number of cycles started so far.
func (t *Task) Cycles() uint64 {
	return t.sched.Cycles()
}

// Plan returns the gate program.
func (t *Task) Plan() *GatePlan {
	return t.sched.Plan()
}
