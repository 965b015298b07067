package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/itohio/gofreq/pkg/report"
)

const (
	// DefaultBaudRate is the report link baud rate.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size of the reports channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns the serial ports present on the host.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// OpenSerial opens port for writing report lines, e.g. as the io.Writer of a Writer.
func OpenSerial(port string, baudRate int) (serial.Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return p, nil
}

// Serial reads report lines sent by a remote frequency counter.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	open     func(port string, baudRate int) (io.ReadCloser, error)

	conn      io.ReadCloser
	reports   chan report.Report
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	closed    bool
}

// New creates a report reader for port. Zero baudRate or bufSize select the defaults.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		open: func(port string, baudRate int) (io.ReadCloser, error) {
			return OpenSerial(port, baudRate)
		},
		reports: make(chan report.Report, bufSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect opens the port and starts reading reports.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.closed {
		return fmt.Errorf("connection closed")
	}

	conn, err := d.open(d.port, d.baudRate)
	if err != nil {
		return err
	}

	d.conn = conn
	d.connected = true
	d.done = make(chan struct{})

	go d.readReports(conn, d.done)

	return nil
}

// Close stops reading, closes the port and then the reports channel.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	// Closing the port unblocks the scanner
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}
	<-d.done

	d.connected = false
	d.closed = true
	close(d.reports)

	return nil
}

// Reports returns the channel of received reports.
func (d *Serial) Reports() <-chan report.Report {
	return d.reports
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readReports parses lines from conn until it fails or the reader is closed.
func (d *Serial) readReports(conn io.Reader, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readReports: %v", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
				log.Printf("Error reading from serial port: %v", err)
			}
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		r, err := ParseLine(line)
		if err != nil {
			// Firmware log output shares the port with report lines
			log.Printf("Skipping line '%s': %v", line, err)
			continue
		}

		select {
		case d.reports <- r:
		case <-d.ctx.Done():
			return
		default:
			log.Printf("Reports channel full, dropping cycle %d", r.Cycle)
		}
	}
}
