package link

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/gofreq/pkg/report"
)

// FormatLine encodes a report as one line.
// Format: unix_micros,cycle,count,hz
// Example: 1700000000000000,3,10000,1000.000
func FormatLine(r report.Report) string {
	return fmt.Sprintf("%d,%d,%d,%.3f\n", r.Timestamp.UnixMicro(), r.Cycle, r.Count, r.Hz)
}

// ParseLine decodes a line produced by FormatLine. Surrounding whitespace is ignored.
func ParseLine(line string) (report.Report, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 4 {
		return report.Report{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return report.Report{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	cycle, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return report.Report{}, fmt.Errorf("invalid cycle: %w", err)
	}

	// The register is signed 16 bit, a wrapped count is negative
	count, err := strconv.ParseInt(parts[2], 10, 16)
	if err != nil {
		return report.Report{}, fmt.Errorf("invalid count: %w", err)
	}

	hz, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return report.Report{}, fmt.Errorf("invalid frequency: %w", err)
	}
	if math.IsNaN(hz) || math.IsInf(hz, 0) {
		return report.Report{}, fmt.Errorf("frequency out of range: %s", parts[3])
	}

	return report.Report{
		Timestamp: time.UnixMicro(micros),
		Cycle:     cycle,
		Count:     int16(count),
		Hz:        hz,
	}, nil
}
