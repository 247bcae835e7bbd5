// Package config provides YAML-based game configuration loading and
// validation for the whack game.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("config: invalid")

// WhackConfig contains all configuration for the Whack-a-Mole game.
type WhackConfig struct {
	Round  WhackRound  `yaml:"round"`
	Grid   WhackGrid   `yaml:"grid"`
	Timing WhackTiming `yaml:"timing"`
}

// WhackRound defines the round timer.
type WhackRound struct {
	Duration int           `yaml:"duration"` // Units counted down before the round ends
	Grace    int           `yaml:"grace"`    // Units to wait after round end before Start is available
	Tick     time.Duration `yaml:"tick"`     // Wall-clock length of one unit
}

// WhackGrid defines the board.
type WhackGrid struct {
	Cells   int `yaml:"cells"`
	Columns int `yaml:"columns"`
}

// WhackTiming defines per-cell intervals, in units.
type WhackTiming struct {
	IdleMin      int `yaml:"idle_min"`
	IdleMax      int `yaml:"idle_max"`
	ActiveWindow int `yaml:"active_window"`
	HitDelay     int `yaml:"hit_delay"`
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalid).
func (e ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the configuration and returns the first problem found.
func (c WhackConfig) Validate() error {
	switch {
	case c.Round.Duration < 1:
		return ValidationError{"round.duration", "must be at least 1"}
	case c.Round.Grace < 0:
		return ValidationError{"round.grace", "must not be negative"}
	case c.Round.Tick <= 0:
		return ValidationError{"round.tick", "must be positive"}
	case c.Grid.Cells < 1:
		return ValidationError{"grid.cells", "must be at least 1"}
	case c.Grid.Columns < 1:
		return ValidationError{"grid.columns", "must be at least 1"}
	case c.Timing.IdleMin < 1:
		return ValidationError{"timing.idle_min", "must be at least 1"}
	case c.Timing.IdleMax < c.Timing.IdleMin:
		return ValidationError{"timing.idle_max", "must not be below idle_min"}
	case c.Timing.ActiveWindow < 1:
		return ValidationError{"timing.active_window", "must be at least 1"}
	case c.Timing.HitDelay < 0:
		return ValidationError{"timing.hit_delay", "must not be negative"}
	}
	return nil
}
