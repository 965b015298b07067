package main

import (
	"flag"
	"fmt"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/link"
	"github.com/itohio/gofreq/pkg/runner"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag = flag.String("config", "freqcount.yaml", "Configuration file path")
		localFlag  = flag.Bool("local", false, "Run the counter in this process instead of reading a serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.gofreq")

	window := application.NewWindow("Frequency Monitor")
	window.Resize(fyne.NewSize(480, 320))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useLocal:   *localFlag,
		readout:    newReadout(),
	}

	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		state.readout.status,
		nil,
		nil,
		state.readout.content(),
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		disconnect(state)
	})
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	connectBtn *widget.Button
	useLocal   bool
	readout    *readout

	mu       sync.Mutex
	source   link.Source
	pumpDone chan struct{} // Closed when the report pump exits
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewHBox(connectBtn, settingsBtn)
}

func (s *appState) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil && s.source.IsConnected()
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.connected() {
		disconnect(state)
		state.connectBtn.SetText("Connect")
		state.connectBtn.SetIcon(theme.LoginIcon())
		return
	}

	if err := connect(state); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.connectBtn.SetText("Disconnect")
	state.connectBtn.SetIcon(theme.LogoutIcon())
}

// connect creates a source, starts it and pumps its reports into the readout.
func connect(state *appState) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	var src link.Source
	if state.useLocal {
		src = runner.NewLocal(state.cfg, 0)
	} else {
		src = link.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, 0)
	}

	if err := src.Connect(); err != nil {
		if state.useLocal {
			return fmt.Errorf("failed to start %s counter: %w", state.cfg.Backend, err)
		}
		return fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err)
	}

	if state.useLocal {
		log.Printf("Started %s counter", state.cfg.Backend)
		state.readout.setSource(fmt.Sprintf("local %s", state.cfg.Backend), state.cfg.Sampling.WindowSeconds)
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
		state.readout.setSource(state.cfg.Serial.Port, state.cfg.Sampling.WindowSeconds)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range src.Reports() {
			UpdateWidgetOnMainThread(func() {
				state.readout.update(r)
			})
		}
	}()

	state.source = src
	state.pumpDone = done
	return nil
}

// disconnect closes the source and waits for the report pump to drain.
func disconnect(state *appState) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.source == nil {
		return
	}
	if err := state.source.Close(); err != nil {
		log.Printf("Error closing source: %v", err)
	}
	<-state.pumpDone

	state.source = nil
	state.pumpDone = nil
	state.readout.setSource("", 0)
	log.Printf("Disconnected")
}
