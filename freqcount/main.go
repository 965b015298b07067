package main

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	rootCmd := &cobra.Command{
		Use:   "freqcount",
		Short: "Hardware-gated frequency counter",
		Long: `freqcount measures the frequency of a digital signal by counting its rising
edges while a precisely timed gate pulse is high, then divides by the gate time.

The counter runs on a simulated board, on Linux GPIO lines (gpiocdev backend)
or on a microcontroller that streams report lines over a serial port.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "freqcount.yaml", "Configuration file path")

	rootCmd.AddCommand(
		newRunCmd(),
		newMonitorCmd(),
		newPortsCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
