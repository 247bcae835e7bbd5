package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-whack/internal/games/whack"
	"github.com/vovakirdan/tui-whack/internal/platform/tui"
	"github.com/vovakirdan/tui-whack/internal/storage"
)

var (
	flagBotReaction int
	flagBotAccuracy float64
	flagDemoSave    bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Watch the bot play a headless round",
	Long: `Run one round without a display. A bot reacts to moles popping up and
whacks them after a reaction delay. Progress is logged to stderr.

Examples:
  whack demo
  whack demo --seed 7 --reaction 250 --accuracy 0.9
  whack demo --tick 100ms --debug`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	defaults := whack.DefaultBotConfig()
	demoCmd.Flags().IntVar(&flagBotReaction, "reaction", int(defaults.Reaction.Milliseconds()), "Bot reaction time in milliseconds")
	demoCmd.Flags().Float64Var(&flagBotAccuracy, "accuracy", defaults.Accuracy, "Share of moles the bot goes for, 0..1")
	demoCmd.Flags().BoolVar(&flagDemoSave, "save", false, "Record the round in the scores database")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}

	logger := newStyledLogger(os.Stderr)

	var store *storage.Store
	if flagDemoSave {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	game, events, err := tui.NewGame(cfg, store, logger, whack.LogListener{Logger: logger})
	if err != nil {
		return err
	}
	defer events.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bot := whack.NewBot(game, whack.BotConfig{
		Reaction: time.Duration(flagBotReaction) * time.Millisecond,
		Accuracy: flagBotAccuracy,
		Seed:     flagSeed,
	}, clockwork.NewRealClock(), logger)

	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()
	go bot.Run(botCtx, events.Events())

	if _, err := game.Start(); err != nil {
		return err
	}

	// Ctrl+C cuts the round short; it still settles
	go func() {
		<-ctx.Done()
		game.Interrupt()
	}()

	if err := game.Wait(context.Background()); err != nil {
		return err
	}
	stopBot()

	fmt.Printf("Bot swung %d times, hit %d\n", bot.Swings(), bot.Hits())
	fmt.Printf("Final score: %d\n", game.Snapshot().Score)
	return nil
}
