package link

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeSerial returns a reader whose port is the read end of a pipe.
func pipeSerial(t *testing.T, bufSize int) (*Serial, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	d := New("test", 0, bufSize)
	d.open = func(string, int) (io.ReadCloser, error) {
		return pr, nil
	}
	return d, pw
}

func TestNew(t *testing.T) {
	d := New("/dev/ttyUSB0", 9600, 10)
	assert.Equal(t, "/dev/ttyUSB0", d.port)
	assert.Equal(t, 9600, d.baudRate)
	assert.Equal(t, 10, d.bufSize)
	assert.False(t, d.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	d := New("/dev/ttyUSB0", 0, 0)
	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.Equal(t, DefaultBufferSize, d.bufSize)
}

func TestSerial_ReadsReports(t *testing.T) {
	d, pw := pipeSerial(t, 10)
	require.NoError(t, d.Connect())
	assert.True(t, d.IsConnected())
	assert.Error(t, d.Connect(), "second connect fails")

	go func() {
		io.WriteString(pw, "freqcount: gate ch0 pin 12\n")
		io.WriteString(pw, "1700000000000000,0,1000,100.000\n")
		io.WriteString(pw, "\n")
		io.WriteString(pw, "1700000012000000,1,-25536,-2553.600\n")
	}()

	for i, want := range []int16{1000, -25536} {
		select {
		case r := <-d.Reports():
			assert.Equal(t, uint64(i), r.Cycle)
			assert.Equal(t, want, r.Count)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for report")
		}
	}

	require.NoError(t, d.Close())
	assert.False(t, d.IsConnected())
}

func TestSerial_GracefulShutdown(t *testing.T) {
	d, pw := pipeSerial(t, 1)
	require.NoError(t, d.Connect())

	// Keep the reader busy with more reports than the buffer holds
	go func() {
		for i := 0; i < 100; i++ {
			if _, err := io.WriteString(pw, "1,1,1,1.000\n"); err != nil {
				return
			}
		}
	}()

	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	// Drain and check the channel is closed
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-d.Reports():
			if !ok {
				assert.Error(t, d.Connect(), "closed reader cannot reconnect")
				assert.NoError(t, d.Close(), "second close is a no-op")
				return
			}
		case <-timeout:
			t.Fatal("reports channel not closed")
		}
	}
}

func TestSerial_ConnectError(t *testing.T) {
	d := New("missing", 0, 0)
	d.open = func(string, int) (io.ReadCloser, error) {
		return nil, errors.New("no such port")
	}

	assert.ErrorContains(t, d.Connect(), "no such port")
	assert.False(t, d.IsConnected())
	assert.NoError(t, d.Close())
}
