package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gofreq/pkg/report"
)

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// Fyne widgets cannot be updated directly from goroutines.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}

// readoutText is the text shown for one report.
type readoutText struct {
	Frequency string
	Detail    string
	Warning   string
}

// formatReadout renders a report for display. window is the gate time in seconds.
func formatReadout(r report.Report, window float64) readoutText {
	t := readoutText{
		Frequency: report.FormatHz(r.Hz),
		Detail: fmt.Sprintf("%.3f Hz  |  %d counts  |  cycle %d  |  %s",
			r.Hz, r.Count, r.Cycle, r.Timestamp.Format("15:04:05")),
	}
	if window > 0 {
		t.Detail += fmt.Sprintf("  |  ±%.3f Hz", 1/window)
	}
	if r.Count < 0 {
		t.Warning = "Counter wrapped: input is above the window capacity"
	}
	return t
}

// readout shows the latest report.
type readout struct {
	frequency *widget.Label
	detail    *widget.Label
	warning   *widget.Label
	status    *widget.Label

	window float64
}

func newReadout() *readout {
	r := &readout{
		frequency: widget.NewLabelWithStyle("---", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true}),
		detail:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}),
		warning:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		status:    widget.NewLabel("Disconnected"),
	}
	r.frequency.SizeName = theme.SizeNameHeadingText
	return r
}

func (r *readout) content() fyne.CanvasObject {
	return container.NewCenter(container.NewVBox(r.frequency, r.detail, r.warning))
}

// setSource resets the readout for a new source. An empty name means disconnected.
func (r *readout) setSource(name string, window float64) {
	r.window = window
	UpdateWidgetOnMainThread(func() {
		r.frequency.SetText("---")
		r.detail.SetText("")
		r.warning.SetText("")
		if name == "" {
			r.status.SetText("Disconnected")
		} else {
			r.status.SetText("Source: " + name)
		}
	})
}

// update shows r. It must run on the main thread.
func (r *readout) update(rep report.Report) {
	t := formatReadout(rep, r.window)
	r.frequency.SetText(t.Frequency)
	r.detail.SetText(t.Detail)
	r.warning.SetText(t.Warning)
}
