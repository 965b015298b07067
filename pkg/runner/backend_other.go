//go:build !linux

package runner

import (
	"fmt"

	"github.com/itohio/gofreq/pkg/config"
)

func openGPIO(cfg *config.Config) (*Hardware, error) {
	return nil, fmt.Errorf("backend %q is only available on linux", config.BackendGPIOCDev)
}
