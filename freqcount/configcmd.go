package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/report"
	"github.com/itohio/gofreq/pkg/runner"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flagConfig); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", flagConfig)
			}
			if err := config.Default().Save(flagConfig); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flagConfig)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and show the gate plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			return describe(cmd, cfg)
		},
	}

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}

// describe validates cfg against the limits of its backend and prints what the counter would do.
func describe(cmd *cobra.Command, cfg *config.Config) error {
	limits, name := runner.Limits(cfg)
	c := runner.Configuration(cfg, nil)
	if err := c.Validate(limits); err != nil {
		return err
	}
	plan, err := freqcount.PlanGate(c.SamplingWindowSeconds, c.GateClockDivisor, c.GateMaxBlocks, limits)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Limits:     %s\n", name)
	fmt.Fprintf(out, "Gate:       %d ticks of %v, %d items in %d block(s)\n",
		plan.Ticks, plan.TickPeriod, len(plan.Items), plan.Blocks)
	fmt.Fprintf(out, "Window:     %v every %gs\n", plan.Duration(), c.SamplingPeriodSeconds)
	fmt.Fprintf(out, "Resolution: %.4f Hz\n", 1/c.SamplingWindowSeconds)
	fmt.Fprintf(out, "Capacity:   %s before the counter wraps\n",
		report.FormatHz(freqcount.MaxMeasurableHz(c.SamplingWindowSeconds, limits)))
	fmt.Fprintf(out, "Filter:     %v, passes up to %s\n",
		freqcount.FilterWidth(c.FilterLength, limits), cutoff(c.FilterLength, limits))
	return nil
}

func cutoff(filterLength int, limits freqcount.Limits) string {
	if filterLength == 0 {
		return "any frequency"
	}
	return report.FormatHz(freqcount.FilterCutoffHz(filterLength, limits))
}
