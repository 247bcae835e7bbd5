package whack

import (
	"context"
	"io"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// BotConfig tunes the autoplayer.
type BotConfig struct {
	Reaction time.Duration // Delay between a mole appearing and the whack
	Accuracy float64       // Probability of going for a mole at all, 0..1
	Seed     int64
}

// DefaultBotConfig is a decent but beatable player.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		Reaction: 400 * time.Millisecond,
		Accuracy: 0.7,
	}
}

// Bot plays a Game by reacting to CellChanged events.
type Bot struct {
	game   *Game
	clock  clockwork.Clock
	cfg    BotConfig
	rng    *rand.Rand
	logger *log.Logger

	swings atomic.Int64
	hits   atomic.Int64
}

// NewBot creates a bot for game. The clock should be the game's clock.
func NewBot(game *Game, cfg BotConfig, clock clockwork.Clock, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bot{
		game:   game,
		clock:  clock,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(uint64(cfg.Seed), 0x6d6f6c65)),
		logger: logger,
	}
}

// Run consumes events until ctx is done or the channel is closed.
func (b *Bot) Run(ctx context.Context, events <-chan Event) {
	var pending []clockwork.Timer
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			e, isCell := evt.(CellChangedEvent)
			if !isCell || e.Visual != VisualActive {
				continue
			}
			if b.rng.Float64() >= b.cfg.Accuracy {
				continue
			}
			id := e.Cell
			pending = append(pending, b.clock.AfterFunc(b.cfg.Reaction, func() {
				b.swings.Add(1)
				if b.game.Activate(id) {
					b.hits.Add(1)
					b.logger.Debug("bot hit", "cell", id)
				}
			}))
		}
	}
}

// Swings returns how many times the bot called Activate.
func (b *Bot) Swings() int {
	return int(b.swings.Load())
}

// Hits returns how many swings scored.
func (b *Bot) Hits() int {
	return int(b.hits.Load())
}
