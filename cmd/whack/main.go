// whack is a terminal Whack-a-Mole game.
//
// Usage:
//
//	whack play              - Play a round in the terminal
//	whack demo              - Let the bot play a headless round
//	whack scores            - Print high scores and recent rounds
//	whack board             - Open the interactive scoreboard
//	whack serve             - Start SSH server for remote play
//	whack config            - Print the effective configuration
//
// Global flags:
//
//	--config <path>   - Game config YAML (default search path otherwise)
//	--seed <value>    - RNG seed for reproducible rounds
//	--db <path>       - Database path (default: ~/.arcade/whack.db)
//	--log-file <path> - Write logs to a file
//	--debug           - Log at debug level
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-whack/internal/config"
	"github.com/vovakirdan/tui-whack/internal/core"
	"github.com/vovakirdan/tui-whack/internal/games/whack"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagConfig  string
	flagLogFile string
	flagDebug   bool

	// Round overrides
	flagDuration int
	flagCells    int
	flagColumns  int
	flagTick     time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "whack",
	Short: "Whack-a-Mole in your terminal",
	Long: `Whack-a-Mole: moles pop up on a grid of cells, hit them before they
duck back down. A round lasts 20 seconds by default.

Available commands:
  play     - Play a round
  demo     - Watch the bot play a headless round
  scores   - Show high scores
  board    - Interactive scoreboard
  serve    - Start SSH server for remote play
  config   - Print the effective configuration

Examples:
  whack play
  whack play --duration 30 --cells 24 --columns 6
  whack demo --seed 42
  whack serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.IntVar(&flagFPS, "fps", core.DefaultConfig().TickRate, "Repaint rate (frames per second)")
	flags.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	flags.StringVar(&flagDBPath, "db", "~/.arcade/whack.db", "Path to scores database")
	flags.StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	flags.StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	flags.BoolVar(&flagDebug, "debug", false, "Log at debug level")

	flags.IntVar(&flagDuration, "duration", 0, "Round length in ticks (overrides config)")
	flags.IntVar(&flagCells, "cells", 0, "Number of cells (overrides config)")
	flags.IntVar(&flagColumns, "columns", 0, "Cells per row (overrides config)")
	flags.DurationVar(&flagTick, "tick", 0, "Length of one tick (overrides config)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadGameConfig loads the YAML configuration and applies flag overrides.
func loadGameConfig(cmd *cobra.Command) (whack.Config, error) {
	fc, err := config.LoadWhack(flagConfig)
	if err != nil {
		return whack.Config{}, err
	}
	cfg := whack.FromFile(fc)

	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.Duration = flagDuration
	}
	if flags.Changed("cells") {
		cfg.Cells = flagCells
	}
	if flags.Changed("columns") {
		cfg.Columns = flagColumns
	}
	if flags.Changed("tick") {
		cfg.Tick = flagTick
	}
	cfg.Seed = flagSeed

	if err := cfg.Validate(); err != nil {
		return whack.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the logger for commands that own the terminal: logs go
// to --log-file when set and are discarded otherwise. The returned closer
// must be called on exit.
func newLogger() (*log.Logger, io.Closer, error) {
	if flagLogFile == "" {
		return log.New(io.Discard), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return newStyledLogger(f), f, nil
}

// newStyledLogger is the timestamped logger used for files and stderr.
func newStyledLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "whack",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
