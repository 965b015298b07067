package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/report"
)

func TestFormatReadout(t *testing.T) {
	r := report.Report{Timestamp: time.Date(2024, 1, 1, 12, 30, 0, 0, time.Local), Cycle: 4, Count: 10000, Hz: 1000}

	got := formatReadout(r, 10)
	assert.Equal(t, "1kHz", got.Frequency)
	assert.Equal(t, "1000.000 Hz  |  10000 counts  |  cycle 4  |  12:30:00  |  ±0.100 Hz", got.Detail)
	assert.Empty(t, got.Warning)

	got = formatReadout(report.Report{Count: -25536, Hz: -25536}, 0)
	assert.NotContains(t, got.Detail, "±")
	assert.Contains(t, got.Warning, "wrapped")
}

func TestCheckSampling(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, checkSampling(cfg))

	cfg.Gate.MaxBlocks = 1
	assert.ErrorIs(t, checkSampling(cfg), freqcount.ErrConfiguration)

	cfg = config.Default()
	cfg.Sampling.PeriodSeconds = 1
	assert.ErrorIs(t, checkSampling(cfg), freqcount.ErrConfiguration)
}
