package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/link"
	"github.com/itohio/gofreq/pkg/report"
	"github.com/itohio/gofreq/pkg/runner"
	"github.com/itohio/gofreq/pkg/tui"
)

type runFlags struct {
	backend   string
	signalHz  float64
	maxHz     float64
	window    float64
	period    float64
	virtual   bool
	cycles    uint64
	serialOut string
	baud      int
	useTUI    bool
	logFile   string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	signalFlag := newHzValue(&f.signalHz)
	maxFlag := newHzValue(&f.maxHz)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the frequency counter in this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, &f, signalFlag.set, maxFlag.set)
			return run(cfg, &f)
		},
	}

	cmd.Flags().StringVar(&f.backend, "backend", "", "Board backend: sim or gpiocdev (overrides config)")
	cmd.Flags().Var(signalFlag, "signal", "Simulated input frequency, e.g. 1kHz (sim backend)")
	cmd.Flags().Var(maxFlag, "max-expected", "Highest expected input frequency, used to warn about counter overflow")
	cmd.Flags().Float64Var(&f.window, "window", 0, "Sampling window in seconds (overrides config)")
	cmd.Flags().Float64Var(&f.period, "period", 0, "Sampling period in seconds (overrides config)")
	cmd.Flags().BoolVar(&f.virtual, "virtual", false, "Run the simulator on a virtual clock")
	cmd.Flags().Uint64Var(&f.cycles, "cycles", 0, "Stop after this many windows (0 runs until interrupted)")
	cmd.Flags().StringVar(&f.serialOut, "serial-out", "", "Also write report lines to this serial port")
	cmd.Flags().IntVar(&f.baud, "baud", 0, "Baud rate for --serial-out (overrides config)")
	cmd.Flags().BoolVar(&f.useTUI, "tui", false, "Show a terminal readout")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Log file while the terminal readout is shown")

	return cmd
}

// applyRunFlags overrides config values with the flags the user set.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, f *runFlags, signalSet, maxSet bool) {
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if signalSet {
		cfg.Sim.SignalHz = f.signalHz
	}
	if maxSet {
		cfg.Sampling.MaxExpectedHz = f.maxHz
	}
	if cmd.Flags().Changed("window") {
		cfg.Sampling.WindowSeconds = f.window
	}
	if cmd.Flags().Changed("period") {
		cfg.Sampling.PeriodSeconds = f.period
	}
	if cmd.Flags().Changed("virtual") {
		cfg.Sim.Virtual = f.virtual
	}
	if f.baud > 0 {
		cfg.Serial.BaudRate = f.baud
	}
}

func run(cfg *config.Config, f *runFlags) error {
	if f.useTUI {
		if err := redirectLog(f.logFile); err != nil {
			return err
		}
	}

	var extra []freqcount.Reporter
	if !f.useTUI {
		extra = append(extra, report.LogReporter{})
	}
	if f.serialOut != "" {
		port, err := link.OpenSerial(f.serialOut, cfg.Serial.BaudRate)
		if err != nil {
			return err
		}
		defer port.Close()
		extra = append(extra, link.NewWriter(port))
	}

	bufSize := report.DefaultBufferSize
	if cfg.Sim.Virtual && f.cycles > uint64(bufSize) {
		bufSize = int(f.cycles)
	}
	src := runner.NewLocal(cfg, bufSize, extra...)
	if f.cycles > 0 {
		src.WithOptions(freqcount.WithMaxCycles(f.cycles))
	}
	if err := src.Connect(); err != nil {
		return err
	}
	defer src.Close()

	if f.useTUI {
		go closeWhenDone(src)
		model := tui.New(fmt.Sprintf("%s backend", cfg.Backend), src.Reports(), cfg.Sampling.WindowSeconds)
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reports are logged by LogReporter; drain the stream so it never fills
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-src.Done():
			return nil
		case _, ok := <-src.Reports():
			if !ok {
				return nil
			}
		}
	}
}

// closeWhenDone closes src once its counter stops on its own, which ends the report
// stream so a readout can show it.
func closeWhenDone(src *runner.Local) {
	<-src.Done()
	if err := src.Close(); err != nil {
		log.Printf("Error stopping counter: %v", err)
	}
}

// redirectLog keeps log output off the terminal readout.
func redirectLog(path string) error {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	if _, err := tea.LogToFile(path, "freqcount"); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	return nil
}
