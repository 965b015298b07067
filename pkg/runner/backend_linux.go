//go:build linux

package runner

import (
	"github.com/itohio/gofreq/pkg/config"
	"github.com/itohio/gofreq/pkg/freqcount"
	"github.com/itohio/gofreq/pkg/gpio"
)

func openGPIO(cfg *config.Config) (*Hardware, error) {
	board, err := gpio.Open(gpio.OptionsFromConfig(&cfg.GPIO))
	if err != nil {
		return nil, err
	}
	return &Hardware{Board: board, Clock: freqcount.SystemClock{}, close: board.Close}, nil
}
