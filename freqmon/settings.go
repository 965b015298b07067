package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/link"
	"github.com/itohio/gofreq/pkg/report"
	"github.com/itohio/gofreq/pkg/runner"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createSamplingTab(state),
		createSimulatorTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(480, 360))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(480, 360))
	d.Show()
}

// saveAndRestart saves the config and restarts a running source so it picks up the change.
func saveAndRestart(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	if state.connected() {
		disconnect(state)
		if err := connect(state); err != nil {
			dialog.ShowError(err, state.window)
			state.connectBtn.SetText("Connect")
		}
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {})
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createSamplingTab creates the Sampling configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%g", state.cfg.Sampling.WindowSeconds))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(fmt.Sprintf("%g", state.cfg.Sampling.PeriodSeconds))

	filterEntry := widget.NewEntry()
	filterEntry.SetText(strconv.Itoa(state.cfg.Counter.FilterLength))

	blocksEntry := widget.NewEntry()
	blocksEntry.SetText(strconv.Itoa(state.cfg.Gate.MaxBlocks))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowEntry},
			{Text: "Period (seconds)", Widget: periodEntry},
			{Text: "Filter Length (0=disabled)", Widget: filterEntry},
			{Text: "Gate Max Blocks", Widget: blocksEntry},
		},
		OnSubmit: func() {
			next := *state.cfg
			if ws, err := strconv.ParseFloat(windowEntry.Text, 64); err == nil {
				next.Sampling.WindowSeconds = ws
			}
			if ps, err := strconv.ParseFloat(periodEntry.Text, 64); err == nil {
				next.Sampling.PeriodSeconds = ps
			}
			if fl, err := strconv.Atoi(filterEntry.Text); err == nil {
				next.Counter.FilterLength = fl
			}
			if mb, err := strconv.Atoi(blocksEntry.Text); err == nil {
				next.Gate.MaxBlocks = mb
			}

			if err := checkSampling(&next); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			*state.cfg = next
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("Sampling", form)
}

// checkSampling rejects settings the counter would refuse at start.
func checkSampling(cfg *config.Config) error {
	limits := freqcount.ESP32Limits()
	c := runner.Configuration(cfg, nil)
	if err := c.Validate(limits); err != nil {
		return err
	}
	_, err := freqcount.PlanGate(c.SamplingWindowSeconds, c.GateClockDivisor, c.GateMaxBlocks, limits)
	return err
}

// createSimulatorTab creates the Simulator configuration tab.
func createSimulatorTab(state *appState) *container.TabItem {
	signalEntry := widget.NewEntry()
	signalEntry.SetText(report.FormatHz(state.cfg.Sim.SignalHz))

	dutyEntry := widget.NewEntry()
	dutyEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Sim.Duty))

	glitchEntry := widget.NewEntry()
	glitchEntry.SetText(report.FormatHz(state.cfg.Sim.GlitchHz))

	glitchWidthEntry := widget.NewEntry()
	glitchWidthEntry.SetText(state.cfg.Sim.GlitchWidth.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Signal (e.g. 1kHz)", Widget: signalEntry},
			{Text: "Duty", Widget: dutyEntry},
			{Text: "Glitch Rate", Widget: glitchEntry},
			{Text: "Glitch Width", Widget: glitchWidthEntry},
		},
		OnSubmit: func() {
			if hz, err := report.ParseHz(signalEntry.Text); err == nil {
				state.cfg.Sim.SignalHz = hz
			}
			if d, err := strconv.ParseFloat(dutyEntry.Text, 64); err == nil {
				state.cfg.Sim.Duty = d
			}
			if hz, err := report.ParseHz(glitchEntry.Text); err == nil {
				state.cfg.Sim.GlitchHz = hz
			}
			if w, err := time.ParseDuration(glitchWidthEntry.Text); err == nil {
				state.cfg.Sim.GlitchWidth = w
			}
			saveAndRestart(state)
		},
	}

	return container.NewTabItem("Simulator", form)
}
