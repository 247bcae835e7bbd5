package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/whack.yaml
var defaultWhackYAML []byte

// DefaultWhackConfig returns the default Whack-a-Mole configuration.
func DefaultWhackConfig() WhackConfig {
	return WhackConfig{
		Round: WhackRound{
			Duration: 20,
			Grace:    5,
			Tick:     time.Second,
		},
		Grid: WhackGrid{
			Cells:   40,
			Columns: 8,
		},
		Timing: WhackTiming{
			IdleMin:      1,
			IdleMax:      4,
			ActiveWindow: 3,
			HitDelay:     2,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultWhackYAML
}
