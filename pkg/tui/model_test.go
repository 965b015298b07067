package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gofreq/pkg/report"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestWaitForReport(t *testing.T) {
	ch := make(chan report.Report, 1)
	ch <- report.Report{Cycle: 5, Hz: 10}

	msg := WaitForReport(ch)()
	assert.Equal(t, ReportMsg{Cycle: 5, Hz: 10}, msg)

	close(ch)
	assert.Equal(t, ClosedMsg{}, WaitForReport(ch)())
}

func TestModel_Reports(t *testing.T) {
	ch := make(chan report.Report)
	m := New("sim", ch, 10)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Waiting")

	m, cmd := update(t, m, ReportMsg{Timestamp: time.Unix(0, 0), Cycle: 1, Count: 10000, Hz: 1000})
	assert.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, 1000.0, m.Last().Hz)

	view := m.View()
	assert.Contains(t, view, "1kHz")
	assert.Contains(t, view, "1000.000 Hz")
	assert.Contains(t, view, "0.100 Hz")
	assert.Contains(t, view, "[LIVE]")
}

func TestModel_Wraps(t *testing.T) {
	m := New("sim", nil, 1)
	m, _ = update(t, m, ReportMsg{Count: -25536, Hz: -25536})

	assert.Contains(t, m.View(), "counter wrapped")
	assert.Contains(t, m.View(), "Wraps: 1")
}

func TestModel_PauseKeepsReading(t *testing.T) {
	m := New("sim", nil, 0)
	m, _ = update(t, m, ReportMsg{Cycle: 1, Hz: 10})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m, cmd := update(t, m, ReportMsg{Cycle: 2, Hz: 20})

	assert.NotNil(t, cmd)
	assert.Equal(t, uint64(1), m.Last().Cycle, "display frozen while paused")
	assert.Contains(t, m.View(), "[PAUSED]")
	assert.Contains(t, m.View(), "Reports: 2")
}

func TestModel_ClosedAndQuit(t *testing.T) {
	m := New("serial", nil, 0)
	m, cmd := update(t, m, ClosedMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "[CLOSED]")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
