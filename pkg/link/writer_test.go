package link

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/stretchr/testify/assert"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	start := time.UnixMicro(1700000000000000)
	w.WindowStart()
	w.FrequencyUpdate(100)
	w.CycleComplete(freqcount.Cycle{Index: 0, Start: start, Count: 1000, Hz: 100})
	w.CycleComplete(freqcount.Cycle{Index: 1, Start: start.Add(12 * time.Second), Count: 0, Hz: 0})

	assert.Equal(t,
		"1700000000000000,0,1000,100.000\n"+
			"1700000012000000,1,0,0.000\n",
		buf.String())
	assert.Zero(t, w.Errors())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("port gone")
}

func TestWriter_ErrorsAreCounted(t *testing.T) {
	w := NewWriter(failingWriter{})
	w.CycleComplete(freqcount.Cycle{})
	w.CycleComplete(freqcount.Cycle{})
	assert.Equal(t, uint64(2), w.Errors())
}
