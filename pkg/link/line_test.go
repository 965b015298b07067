package link

import (
	"testing"
	"time"

	"github.com/itohio/gofreq/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    report.Report
		wantErr bool
	}{
		{
			name: "valid line",
			line: "1700000000000000,3,10000,1000.000",
			want: report.Report{Timestamp: time.UnixMicro(1700000000000000), Cycle: 3, Count: 10000, Hz: 1000},
		},
		{
			name: "wrapped count",
			line: "1700000000000000,0,-25536,-25536.000",
			want: report.Report{Timestamp: time.UnixMicro(1700000000000000), Count: -25536, Hz: -25536},
		},
		{
			name: "zero frequency with trailing newline",
			line: "1,7,0,0.000\n",
			want: report.Report{Timestamp: time.UnixMicro(1), Cycle: 7},
		},
		{name: "invalid - wrong number of fields", line: "1,2,3", wantErr: true},
		{name: "invalid - too many fields", line: "1,2,3,4,5", wantErr: true},
		{name: "invalid - non-numeric timestamp", line: "abc,2,3,4", wantErr: true},
		{name: "invalid - negative cycle", line: "1,-2,3,4", wantErr: true},
		{name: "invalid - count out of range", line: "1,2,40000,4", wantErr: true},
		{name: "invalid - frequency", line: "1,2,3,fast", wantErr: true},
		{name: "invalid - NaN frequency", line: "1,2,3,NaN", wantErr: true},
		{name: "invalid - log line", line: "freqcount: gate ch0 pin 12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Timestamp.UnixNano(), got.Timestamp.UnixNano())
			assert.Equal(t, tt.want.Cycle, got.Cycle)
			assert.Equal(t, tt.want.Count, got.Count)
			assert.InDelta(t, tt.want.Hz, got.Hz, 1e-9)
		})
	}
}

func TestFormatLine(t *testing.T) {
	r := report.Report{
		Timestamp: time.UnixMicro(1700000000123456),
		Cycle:     42,
		Count:     12345,
		Hz:        1234.5,
	}

	line := FormatLine(r)
	assert.Equal(t, "1700000000123456,42,12345,1234.500\n", line)

	got, err := ParseLine(line)
	require.NoError(t, err)
	assert.True(t, r.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, r.Cycle, got.Cycle)
	assert.Equal(t, r.Count, got.Count)
	assert.Equal(t, r.Hz, got.Hz)
}
