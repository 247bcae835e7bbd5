package whack

import (
	"time"

	"github.com/vovakirdan/tui-whack/internal/config"
)

// Config holds the parameters of a round. Every interval is counted in
// units of Tick.
type Config struct {
	Duration     int           // Units on the round timer
	Grace        int           // Units between round end and Start being available again
	Tick         time.Duration // Wall-clock length of one unit
	Cells        int           // Number of cells on the board
	Columns      int           // Cells per row, used for layout only
	IdleMin      int           // Shortest idle delay
	IdleMax      int           // Longest idle delay
	ActiveWindow int           // How long a cell stays hittable
	HitDelay     int           // How long the hit marker stays up
	Seed         int64         // RNG seed, 0 seeds from the clock
}

// DefaultConfig returns the classic 40-cell, 20-second setup.
func DefaultConfig() Config {
	return FromFile(config.DefaultWhackConfig())
}

// FromFile converts a loaded YAML configuration.
func FromFile(fc config.WhackConfig) Config {
	return Config{
		Duration:     fc.Round.Duration,
		Grace:        fc.Round.Grace,
		Tick:         fc.Round.Tick,
		Cells:        fc.Grid.Cells,
		Columns:      fc.Grid.Columns,
		IdleMin:      fc.Timing.IdleMin,
		IdleMax:      fc.Timing.IdleMax,
		ActiveWindow: fc.Timing.ActiveWindow,
		HitDelay:     fc.Timing.HitDelay,
	}
}

// File converts back to the YAML representation. Seed is not persisted.
func (c Config) File() config.WhackConfig {
	return config.WhackConfig{
		Round: config.WhackRound{
			Duration: c.Duration,
			Grace:    c.Grace,
			Tick:     c.Tick,
		},
		Grid: config.WhackGrid{
			Cells:   c.Cells,
			Columns: c.Columns,
		},
		Timing: config.WhackTiming{
			IdleMin:      c.IdleMin,
			IdleMax:      c.IdleMax,
			ActiveWindow: c.ActiveWindow,
			HitDelay:     c.HitDelay,
		},
	}
}

// Validate applies the same rules as the YAML loader.
func (c Config) Validate() error {
	return c.File().Validate()
}

func (c Config) units(n int) time.Duration {
	return time.Duration(n) * c.Tick
}
