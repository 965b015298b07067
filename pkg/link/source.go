package link

import "github.com/itohio/gofreq/pkg/report"

// Source is a stream of frequency reports, either from a counter on the other end of a
// serial link or from one running in this process.
type Source interface {
	Connect() error
	Close() error
	Reports() <-chan report.Report
	IsConnected() bool
}

var _ Source = (*Serial)(nil)
