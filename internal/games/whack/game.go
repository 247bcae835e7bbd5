// Package whack implements the Whack-a-Mole game core: a fixed-length round
// timer, one concurrent controller per grid cell, and a shared score.
//
// The package has no presentation dependency. Displays observe a Game
// through a Listener and read its state with Snapshot.
package whack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// GameID identifies this game in score storage.
const GameID = "whack"

// ErrRoundActive is returned by StartRound while a round is running or
// settling.
var ErrRoundActive = errors.New("whack: round already active")

// RoundID uniquely identifies a round.
type RoundID string

// RoundResult is the outcome of a settled round.
type RoundResult struct {
	ID          RoundID
	Score       int
	Attempts    int // Every Activate call made while the round was running
	Duration    int // Configured round length in units
	Elapsed     time.Duration
	StartedAt   time.Time
	Interrupted bool
}

// Misses is the number of attempts that did not score.
func (r RoundResult) Misses() int {
	return r.Attempts - r.Score
}

// ResultSaver persists settled rounds. Storage implements it so the game
// does not depend on the storage package.
type ResultSaver interface {
	SaveRoundResult(result RoundResult) error
}

// CellState is a read-only view of one cell.
type CellState struct {
	ID    int
	Phase Phase
}

// Snapshot is a read-only copy of the game state for displays.
type Snapshot struct {
	Round         RoundID
	Score         int
	TimeRemaining int
	Finished      bool // Timer has stopped; cells are idle or settling
	Running       bool // A round is active; Start is rejected
	Timer         TimerState
	Cells         []CellState
}

// Option configures a Game.
type Option func(*Game)

// WithClock sets the clock used for every timed wait.
func WithClock(c clockwork.Clock) Option {
	return func(g *Game) {
		g.clock = c
	}
}

// WithListener sets the notification target.
func WithListener(l Listener) Option {
	return func(g *Game) {
		g.listener = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		g.logger = l
	}
}

// WithResultSaver sets where settled rounds are persisted.
func WithResultSaver(s ResultSaver) Option {
	return func(g *Game) {
		g.saver = s
	}
}

// Game is the coordinator. It owns the current round, starts the round
// timer and the cell controllers, and routes player activations.
type Game struct {
	cfg      Config
	clock    clockwork.Clock
	listener Listener
	logger   *log.Logger
	saver    ResultSaver

	mu      sync.Mutex // serializes StartRound
	rounds  int64
	running atomic.Bool
	current atomic.Pointer[round]
}

// New creates a game with the given default round configuration.
func New(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Game{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		listener: NopListener{},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the default round configuration.
func (g *Game) Config() Config {
	return g.cfg
}

// Start begins a round with the default configuration.
func (g *Game) Start() (RoundID, error) {
	return g.StartRound(g.cfg)
}

// StartRound resets all state and begins a new round. It returns
// ErrRoundActive, leaving the current round untouched, if a round has not
// settled yet.
func (g *Game) StartRound(cfg Config) (RoundID, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("whack: start round: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running.CompareAndSwap(false, true) {
		g.logger.Debug("start rejected, round active")
		return "", ErrRoundActive
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = g.clock.Now().UnixNano()
	}
	seed += g.rounds
	g.rounds++

	r := &round{
		id:        RoundID(uuid.NewString()),
		cfg:       cfg,
		clock:     g.clock,
		listener:  g.listener,
		logger:    g.logger,
		startedAt: g.clock.Now(),
		done:      make(chan struct{}),
	}
	r.remaining.Store(int64(cfg.Duration))
	r.cells = make([]*cell, cfg.Cells)
	for i := range r.cells {
		r.cells[i] = newCell(i, r, seed)
	}

	cellCtx, stopCells := context.WithCancel(context.Background())
	timerCtx, interrupt := context.WithCancel(context.Background())
	r.stopCells = stopCells
	r.interrupt = interrupt

	g.current.Store(r)
	g.listener.ScoreChanged(0)

	g.logger.Info("round started",
		"round", r.id,
		"cells", cfg.Cells,
		"duration", cfg.Duration,
		"tick", cfg.Tick,
	)

	for _, c := range r.cells {
		r.cellsDone.Go(func() {
			c.run(cellCtx)
		})
	}
	go g.runRound(r, timerCtx)

	return r.id, nil
}

func (g *Game) runRound(r *round, ctx context.Context) {
	r.runTimer(ctx)
	r.stopCells()
	r.interrupt()

	result := RoundResult{
		ID:          r.id,
		Score:       r.score.Get(),
		Attempts:    int(r.attempts.Load()),
		Duration:    r.cfg.Duration,
		Elapsed:     g.clock.Since(r.startedAt),
		StartedAt:   r.startedAt,
		Interrupted: r.timerState() == TimerInterrupted,
	}

	if g.saver != nil {
		if err := g.saver.SaveRoundResult(result); err != nil {
			g.logger.Error("could not save round", "round", r.id, "error", err)
		}
	}

	g.logger.Info("round settled", "round", r.id, "score", result.Score, "attempts", result.Attempts)
	g.running.Store(false)
	g.listener.RoundSettled(result)
	close(r.done)
}

// Activate registers a player attempt on a cell. It returns true only when
// the cell was Active, in which case the score went up by exactly one.
// Calls on idle, hit, or unknown cells, or outside a round, are ignored.
func (g *Game) Activate(cellID int) bool {
	r := g.current.Load()
	if r == nil || r.finished.Load() {
		return false
	}
	if cellID < 0 || cellID >= len(r.cells) {
		return false
	}

	r.attempts.Add(1)
	return r.cells[cellID].activate()
}

// Interrupt cuts the current round short. The round still settles: every
// cell is forced idle and RoundSettled is emitted.
func (g *Game) Interrupt() {
	if r := g.current.Load(); r != nil {
		r.interrupt()
	}
}

// Wait blocks until the current round has settled or ctx is done.
func (g *Game) Wait(ctx context.Context) error {
	r := g.current.Load()
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether a round is active. Start is rejected while true.
func (g *Game) Running() bool {
	return g.running.Load()
}

// Snapshot returns the current state. It never blocks.
func (g *Game) Snapshot() Snapshot {
	r := g.current.Load()
	if r == nil {
		cells := make([]CellState, g.cfg.Cells)
		for i := range cells {
			cells[i] = CellState{ID: i, Phase: PhaseIdle}
		}
		return Snapshot{Cells: cells}
	}

	finished := r.finished.Load()
	snap := Snapshot{
		Round:         r.id,
		Score:         r.score.Get(),
		TimeRemaining: int(r.remaining.Load()),
		Finished:      finished,
		Running:       g.running.Load(),
		Timer:         r.timerState(),
		Cells:         make([]CellState, len(r.cells)),
	}
	for i, c := range r.cells {
		snap.Cells[i] = CellState{ID: i, Phase: c.Phase()}
	}
	return snap
}
