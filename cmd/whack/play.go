package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-whack/internal/core"
	"github.com/vovakirdan/tui-whack/internal/platform/tui"
	"github.com/vovakirdan/tui-whack/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a round",
	Long: `Start the game in the terminal. Press s to start a round.

Controls:
  Arrows/hjkl  - Move the cursor
  Space/Enter  - Whack the cell under the cursor
  Mouse click  - Whack a cell
  S            - Start a round
  Tab          - Scoreboard
  ?            - Toggle help
  Q/Ctrl+C     - Quit

Examples:
  whack play
  whack play --seed 42
  whack play --config ./my-whack.yaml
  whack play --log-file whack.log --debug`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		// Play without persistence
		fmt.Fprintf(os.Stderr, "Warning: scores will not be saved: %v\n", err)
		logger.Warn("could not open scores database", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	game, events, err := tui.NewGame(cfg, store, logger)
	if err != nil {
		return err
	}

	rc := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
	}
	if err := tui.Run(game, events, store, rc); err != nil {
		return err
	}

	// Quitting interrupts the round; let it settle so it is saved
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return game.Wait(ctx)
}
