package whack

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// TimerState is the round timer's state.
type TimerState int32

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerExpired
	TimerInterrupted
)

func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "Idle"
	case TimerRunning:
		return "Running"
	case TimerExpired:
		return "Expired"
	case TimerInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// round is the shared state of one play session. It is created by
// Game.StartRound and discarded once the round settles.
type round struct {
	id        RoundID
	cfg       Config
	clock     clockwork.Clock
	listener  Listener
	logger    *log.Logger
	startedAt time.Time

	score    Counter
	scoreMu  sync.Mutex // orders ScoreChanged notifications with increments
	attempts atomic.Int64

	remaining atomic.Int64
	finished  atomic.Bool
	state     atomic.Int32

	cells     []*cell
	stopCells context.CancelFunc
	cellsDone sync.WaitGroup

	interrupt context.CancelFunc
	done      chan struct{}
}

func (r *round) timerState() TimerState {
	return TimerState(r.state.Load())
}

func (r *round) recordHit(cellID int) {
	r.scoreMu.Lock()
	score := r.score.Increment()
	r.listener.ScoreChanged(score)
	r.scoreMu.Unlock()

	r.logger.Debug("hit", "round", r.id, "cell", cellID, "score", score)
}

// sleep waits d on the round clock. Returns false if ctx was cancelled first.
func (r *round) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := r.clock.NewTimer(d)
	select {
	case <-ctx.Done():
		t.Stop()
		return false
	case <-t.Chan():
		return ctx.Err() == nil
	}
}

// wait is sleep for cell controllers: it also fails once the round is finished.
func (r *round) wait(ctx context.Context, d time.Duration) bool {
	return r.sleep(ctx, d) && !r.finished.Load()
}

// runTimer counts the round down, one notification per unit from Duration
// to 0, then forces every cell idle and waits out the grace period.
// Cancelling ctx interrupts it.
func (r *round) runTimer(ctx context.Context) {
	r.state.Store(int32(TimerRunning))

	for remaining := r.cfg.Duration; ; remaining-- {
		r.remaining.Store(int64(remaining))
		r.listener.TimeChanged(remaining)
		if remaining == 0 {
			break
		}
		if !r.sleep(ctx, r.cfg.Tick) {
			r.interrupted()
			return
		}
	}

	r.state.Store(int32(TimerExpired))
	r.finish()
	r.listener.RoundEnded(r.id)
	r.logger.Info("round expired", "round", r.id, "score", r.score.Get())

	if !r.sleep(ctx, r.cfg.units(r.cfg.Grace)) {
		r.logger.Warn("grace period interrupted", "round", r.id)
	}
	r.cellsDone.Wait()
}

// interrupted handles a timer cancelled before natural expiry.
func (r *round) interrupted() {
	r.state.Store(int32(TimerInterrupted))
	r.listener.TimerInterrupted(r.id)
	r.logger.Warn("round interrupted", "round", r.id, "remaining", r.remaining.Load())

	r.remaining.Store(0)
	r.finish()
	r.cellsDone.Wait()
}

// finish publishes the finished flag and broadcasts forced termination.
func (r *round) finish() {
	r.finished.Store(true)
	r.stopCells()
}
