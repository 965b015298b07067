package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/link"
	"github.com/itohio/gofreq/pkg/report"
	"github.com/itohio/gofreq/pkg/tui"
)

func newMonitorCmd() *cobra.Command {
	var (
		port    string
		baud    int
		useTUI  bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Show reports streamed by a counter over a serial port",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Serial.Port
			}
			if baud == 0 {
				baud = cfg.Serial.BaudRate
			}
			if useTUI {
				if err := redirectLog(logFile); err != nil {
					return err
				}
			}

			src := link.New(port, baud, 0)
			if err := src.Connect(); err != nil {
				return err
			}
			defer src.Close()

			if useTUI {
				model := tui.New(port, src.Reports(), cfg.Sampling.WindowSeconds)
				_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
				return err
			}
			return printReports(cmd, src)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port (overrides config)")
	cmd.Flags().IntVar(&baud, "baud", 0, "Baud rate (overrides config)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Show a terminal readout")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file while the terminal readout is shown")

	return cmd
}

func printReports(cmd *cobra.Command, src link.Source) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-src.Reports():
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%s  #%d  %s (%d counts)\n",
				r.Timestamp.Format("15:04:05.000"), r.Cycle, report.FormatHz(r.Hz), r.Count)
		}
	}
}
