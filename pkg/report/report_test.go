package report

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCycle(t *testing.T) {
	start := time.Unix(1700000000, 0)
	r := FromCycle(freqcount.Cycle{Index: 7, Start: start, Count: 1000, Hz: 100})

	assert.Equal(t, Report{Timestamp: start, Cycle: 7, Count: 1000, Hz: 100}, r)
}

func TestChannelReporter_Delivers(t *testing.T) {
	r := NewChannelReporter(4)

	r.WindowStart()
	r.FrequencyUpdate(10)
	r.CycleComplete(freqcount.Cycle{Index: 0, Count: 10, Hz: 10})
	r.CycleComplete(freqcount.Cycle{Index: 1, Count: 20, Hz: 20})

	got := <-r.Reports()
	assert.Equal(t, uint64(0), got.Cycle)
	got = <-r.Reports()
	assert.Equal(t, uint64(1), got.Cycle)
	assert.Equal(t, 20.0, got.Hz)
	assert.Zero(t, r.Dropped())
}

func TestChannelReporter_DropsWhenFull(t *testing.T) {
	r := NewChannelReporter(1)

	r.CycleComplete(freqcount.Cycle{Index: 0})
	r.CycleComplete(freqcount.Cycle{Index: 1})
	r.CycleComplete(freqcount.Cycle{Index: 2})

	assert.Equal(t, uint64(2), r.Dropped())
	got := <-r.Reports()
	assert.Equal(t, uint64(0), got.Cycle, "oldest report is kept")
}

func TestChannelReporter_Close(t *testing.T) {
	r := NewChannelReporter(0)
	r.Close()
	r.Close() // second close is a no-op

	// Reports after close are ignored and must not panic
	r.CycleComplete(freqcount.Cycle{Index: 3})

	_, ok := <-r.Reports()
	assert.False(t, ok, "channel should be closed")
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := LogReporter{Logger: log.New(&buf, "", 0)}

	r.WindowStart()
	r.FrequencyUpdate(1000)

	out := buf.String()
	assert.Contains(t, out, "Begin sampling")
	assert.Contains(t, out, "1000.000 Hz")
}

func TestFormatHz(t *testing.T) {
	assert.Contains(t, FormatHz(1000), "kHz")
	assert.Contains(t, FormatHz(2_000_000), "MHz")
	assert.Equal(t, "-"+FormatHz(25536), FormatHz(-25536))
	assert.Equal(t, "NaNHz", FormatHz(nan()))
}

func TestParseHz(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "1kHz", want: 1000},
		{in: "2.5MHz", want: 2_500_000},
		{in: "50Hz", want: 50},
		{in: "fast", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHz(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestFrequencyRoundTrip(t *testing.T) {
	assert.InDelta(t, 16383.5, FromFrequency(ToFrequency(16383.5)), 1e-9)
}

func nan() float64 {
	var zero float64
	return zero / zero
}
