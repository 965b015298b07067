// Package tui is a terminal readout for a stream of frequency reports.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/itohio/gofreq/pkg/report"
)

// ReportMsg delivers one report to the model.
type ReportMsg report.Report

// ClosedMsg tells the model the report stream ended.
type ClosedMsg struct{}

// WaitForReport returns a command that reads the next report from ch.
func WaitForReport(ch <-chan report.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return ClosedMsg{}
		}
		return ReportMsg(r)
	}
}

// Model shows the latest measurement of a source.
type Model struct {
	width  int
	height int

	title   string
	reports <-chan report.Report
	window  float64

	last     report.Report
	received uint64
	wraps    uint64
	paused   bool
	closed   bool
}

// New creates a model reading reports. window is the gate time in seconds, used to
// show resolution; zero hides it.
func New(title string, reports <-chan report.Report, window float64) Model {
	return Model{
		title:   title,
		reports: reports,
		window:  window,
	}
}

func (m Model) Init() tea.Cmd {
	return WaitForReport(m.reports)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p", "P", " ":
			m.paused = !m.paused
		}
		return m, nil

	case ReportMsg:
		m.received++
		if msg.Count < 0 {
			m.wraps++
		}
		if !m.paused {
			m.last = report.Report(msg)
		}
		return m, WaitForReport(m.reports)

	case ClosedMsg:
		m.closed = true
		return m, nil
	}

	return m, nil
}

// Last returns the report on display.
func (m Model) Last() report.Report {
	return m.last
}

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 60
	}

	title := StyleTitleBar.Width(width).Render("gofreq  " + m.title)

	var body string
	if m.received == 0 {
		body = StyleLabel.Render("Waiting for the first window...")
	} else {
		readout := StyleReadout
		if m.last.Count < 0 {
			readout = StyleWrapped
		}
		lines := []string{
			readout.Render(report.FormatHz(m.last.Hz)),
			"",
			field("Frequency", fmt.Sprintf("%.3f Hz", m.last.Hz)),
			field("Count", fmt.Sprintf("%d", m.last.Count)),
			field("Cycle", fmt.Sprintf("%d", m.last.Cycle)),
			field("Gate open", m.last.Timestamp.Format(time.TimeOnly)),
		}
		if m.window > 0 {
			lines = append(lines, field("Resolution", fmt.Sprintf("%.3f Hz", 1/m.window)))
		}
		if m.last.Count < 0 {
			lines = append(lines, StyleWrapped.Render("counter wrapped, reading is not valid"))
		}
		body = strings.Join(lines, "\n")
	}
	panel := StylePanel.Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, title, panel, m.statusBar(width))
}

func (m Model) statusBar(width int) string {
	var status string
	switch {
	case m.closed:
		status = StyleClosed.Render("[CLOSED]")
	case m.paused:
		status = StylePaused.Render("[PAUSED]")
	default:
		status = StyleLive.Render("[LIVE]")
	}

	info := fmt.Sprintf(" Reports: %d  Wraps: %d", m.received, m.wraps)
	help := StyleHelp.Render("  p pause  q quit")

	return StyleStatusBar.Width(width).Render(status + info + help)
}

func field(label, value string) string {
	return StyleLabel.Render(fmt.Sprintf("%-11s", label)) + StyleValue.Render(value)
}
