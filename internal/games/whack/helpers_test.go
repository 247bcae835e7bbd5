package whack

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// recorder captures every notification in arrival order.
type recorder struct {
	mu          sync.Mutex
	times       []int
	scores      []int
	cells       map[int][]Visual
	ended       []RoundID
	settled     []RoundResult
	interrupted []RoundID
}

func newRecorder() *recorder {
	return &recorder{cells: make(map[int][]Visual)}
}

func (r *recorder) TimeChanged(remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, remaining)
}

func (r *recorder) ScoreChanged(score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, score)
}

func (r *recorder) CellChanged(cellID int, v Visual) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cells[cellID] = append(r.cells[cellID], v)
}

func (r *recorder) RoundEnded(id RoundID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, id)
}

func (r *recorder) RoundSettled(result RoundResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled = append(r.settled, result)
}

func (r *recorder) TimerInterrupted(id RoundID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interrupted = append(r.interrupted, id)
}

func (r *recorder) Times() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.times...)
}

func (r *recorder) Scores() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.scores...)
}

func (r *recorder) CellVisuals(id int) []Visual {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Visual(nil), r.cells[id]...)
}

func (r *recorder) Ended() []RoundID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RoundID(nil), r.ended...)
}

func (r *recorder) Settled() []RoundResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RoundResult(nil), r.settled...)
}

func (r *recorder) Interrupted() []RoundID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RoundID(nil), r.interrupted...)
}

// testConfig is a single-cell board whose cell rises after exactly one unit.
func testConfig() Config {
	return Config{
		Duration:     3,
		Grace:        5,
		Tick:         time.Second,
		Cells:        1,
		Columns:      1,
		IdleMin:      1,
		IdleMax:      1,
		ActiveWindow: 3,
		HitDelay:     2,
		Seed:         1,
	}
}

func newTestGame(t *testing.T, cfg Config, opts ...Option) (*Game, *clockwork.FakeClock, *recorder) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	opts = append([]Option{WithClock(clock), WithListener(rec)}, opts...)

	g, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g, clock, rec
}

// blockUntil waits until exactly n goroutines are sleeping on the fake clock.
func blockUntil(t *testing.T, clock *clockwork.FakeClock, n int) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, n); err != nil {
		t.Fatalf("timed out waiting for %d clock waiters: %v", n, err)
	}
}

// step waits for the expected sleepers and advances one tick.
func step(t *testing.T, clock *clockwork.FakeClock, waiters int, tick time.Duration) {
	t.Helper()
	blockUntil(t, clock, waiters)
	clock.Advance(tick)
}

// waitUntil polls cond in real time.
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// advanceUntil ticks the fake clock until cond holds for the snapshot.
func advanceUntil(t *testing.T, g *Game, clock *clockwork.FakeClock, waiters int, what string, cond func(Snapshot) bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond(g.Snapshot()) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out advancing until %s", what)
		}
		step(t, clock, waiters, g.Config().Tick)

		settle := time.Now().Add(20 * time.Millisecond)
		for !cond(g.Snapshot()) && time.Now().Before(settle) {
			time.Sleep(time.Millisecond)
		}
	}
}

func phaseOf(id int, p Phase) func(Snapshot) bool {
	return func(s Snapshot) bool {
		return s.Cells[id].Phase == p
	}
}

func waitSettled(t *testing.T, g *Game) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
}

// stop interrupts the round and waits for it to settle.
func stop(t *testing.T, g *Game) {
	t.Helper()
	g.Interrupt()
	waitSettled(t, g)
}

type savedResults struct {
	mu      sync.Mutex
	results []RoundResult
	err     error
}

func (s *savedResults) SaveRoundResult(r RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return s.err
}
