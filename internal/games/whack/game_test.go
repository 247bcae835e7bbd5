package whack

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleCellHitBeforeRoundEnd(t *testing.T) {
	cfg := testConfig()
	g, clock, rec := newTestGame(t, cfg)

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// t=1: the cell rises
	step(t, clock, 2, cfg.Tick)
	waitUntil(t, "cell active", func() bool { return phaseOf(0, PhaseActive)(g.Snapshot()) })

	if !g.Activate(0) {
		t.Fatal("Activate() on an active cell should score")
	}
	if got := g.Snapshot().Score; got != 1 {
		t.Fatalf("Score = %d, expected 1", got)
	}

	// t=2, t=3
	step(t, clock, 2, cfg.Tick)
	step(t, clock, 2, cfg.Tick)

	waitUntil(t, "round end", func() bool { return len(rec.Ended()) == 1 })
	waitUntil(t, "cell terminated", func() bool { return phaseOf(0, PhaseTerminated)(g.Snapshot()) })

	snap := g.Snapshot()
	if snap.Score != 1 {
		t.Errorf("Score = %d, expected 1", snap.Score)
	}
	if !snap.Finished || snap.TimeRemaining != 0 {
		t.Errorf("Finished = %v, TimeRemaining = %d, expected finished at 0", snap.Finished, snap.TimeRemaining)
	}
	if snap.Cells[0].Phase.Visual() != VisualIdle {
		t.Errorf("cell visual = %v, expected Idle", snap.Cells[0].Phase.Visual())
	}
	if snap.Timer != TimerExpired {
		t.Errorf("Timer = %v, expected Expired", snap.Timer)
	}

	visuals := rec.CellVisuals(0)
	if len(visuals) < 3 || visuals[0] != VisualActive || visuals[1] != VisualHit || visuals[len(visuals)-1] != VisualIdle {
		t.Errorf("cell visuals = %v, expected Active, Hit, ..., Idle", visuals)
	}

	// Grace period
	step(t, clock, 1, cfg.units(cfg.Grace))
	waitSettled(t, g)

	settled := rec.Settled()
	if len(settled) != 1 {
		t.Fatalf("RoundSettled emitted %d times, expected 1", len(settled))
	}
	if settled[0].Score != 1 || settled[0].Attempts != 1 || settled[0].Interrupted {
		t.Errorf("result = %+v, expected score 1, 1 attempt, not interrupted", settled[0])
	}
}

func TestActivateIdleCellIsIgnored(t *testing.T) {
	g, clock, rec := newTestGame(t, testConfig())

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	blockUntil(t, clock, 2)

	if g.Activate(0) {
		t.Error("Activate() on an idle cell should not score")
	}
	if got := g.Snapshot().Score; got != 0 {
		t.Errorf("Score = %d, expected 0", got)
	}
	if v := rec.CellVisuals(0); len(v) != 0 {
		t.Errorf("idle activation changed visuals: %v", v)
	}

	stop(t, g)

	if got := rec.Settled()[0].Misses(); got != 1 {
		t.Errorf("Misses() = %d, expected 1", got)
	}
}

func TestActivateOutsideRoundOrUnknownCell(t *testing.T) {
	g, clock, _ := newTestGame(t, testConfig())

	if g.Activate(0) {
		t.Error("Activate() before any round should be ignored")
	}

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	step(t, clock, 2, time.Second)
	waitUntil(t, "cell active", func() bool { return phaseOf(0, PhaseActive)(g.Snapshot()) })

	for _, id := range []int{-1, 1, 100} {
		if g.Activate(id) {
			t.Errorf("Activate(%d) should be ignored", id)
		}
	}
	stop(t, g)
}

func TestDoubleStartRejected(t *testing.T) {
	g, _, _ := newTestGame(t, testConfig())

	id, err := g.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	_, err = g.Start()
	if !errors.Is(err, ErrRoundActive) {
		t.Fatalf("second Start() = %v, expected ErrRoundActive", err)
	}

	snap := g.Snapshot()
	if snap.Round != id {
		t.Errorf("round changed from %s to %s", id, snap.Round)
	}
	if !snap.Running || snap.Finished || snap.TimeRemaining != 3 {
		t.Errorf("first round disturbed: %+v", snap)
	}

	stop(t, g)

	// Start is available again once the round settles
	id2, err := g.Start()
	if err != nil {
		t.Fatalf("Start() after settle failed: %v", err)
	}
	if id2 == id {
		t.Error("new round should get a new id")
	}
	stop(t, g)
}

func TestStartRoundValidatesConfig(t *testing.T) {
	g, _, _ := newTestGame(t, testConfig())

	bad := testConfig()
	bad.Cells = 0
	if _, err := g.StartRound(bad); err == nil {
		t.Fatal("StartRound() with no cells should fail")
	}
	if g.Running() {
		t.Error("rejected StartRound() should not mark the game running")
	}

	if _, err := New(bad); err == nil {
		t.Error("New() with invalid config should fail")
	}
}

func TestTimeChangedCountsDownOncePerUnit(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 5
	cfg.Grace = 0
	cfg.IdleMin, cfg.IdleMax = 100, 100
	g, clock, rec := newTestGame(t, cfg)

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	for i := 0; i < cfg.Duration; i++ {
		if n := len(rec.Ended()); n != 0 {
			t.Fatalf("round ended early after %d ticks", i)
		}
		step(t, clock, 2, cfg.Tick)
		want := cfg.Duration - i - 1
		waitUntil(t, "time change", func() bool { return g.Snapshot().TimeRemaining == want })
	}
	waitSettled(t, g)

	expected := []int{5, 4, 3, 2, 1, 0}
	if got := rec.Times(); !slices.Equal(got, expected) {
		t.Errorf("TimeChanged values = %v, expected %v", got, expected)
	}
	if n := len(rec.Ended()); n != 1 {
		t.Errorf("RoundEnded emitted %d times, expected 1", n)
	}
}

func TestConcurrentActivateScoresOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 100
	g, clock, _ := newTestGame(t, cfg)

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	step(t, clock, 2, cfg.Tick)
	waitUntil(t, "cell active", func() bool { return phaseOf(0, PhaseActive)(g.Snapshot()) })

	var (
		wg    sync.WaitGroup
		gate  = make(chan struct{})
		wins  atomic.Int64
		calls = 64
	)
	for range calls {
		wg.Go(func() {
			<-gate
			if g.Activate(0) {
				wins.Add(1)
			}
		})
	}
	close(gate)
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d concurrent activations scored, expected exactly 1", wins.Load())
	}
	if got := g.Snapshot().Score; got != 1 {
		t.Errorf("Score = %d, expected 1", got)
	}

	stop(t, g)
}

func TestScoreCountsActiveIntervals(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 1000
	g, clock, rec := newTestGame(t, cfg)

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	expected := 0
	for interval := 0; interval < 6; interval++ {
		advanceUntil(t, g, clock, 2, "cell active", phaseOf(0, PhaseActive))

		if interval%3 == 2 {
			// Let this one expire untouched
			advanceUntil(t, g, clock, 2, "cell idle", phaseOf(0, PhaseIdle))
			if got := g.Snapshot().Score; got != expected {
				t.Fatalf("expired interval changed score to %d, expected %d", got, expected)
			}
			continue
		}

		for i := 0; i < 3; i++ {
			scored := g.Activate(0)
			if scored != (i == 0) {
				t.Fatalf("interval %d, activation %d: scored = %v", interval, i, scored)
			}
		}
		expected++
		if got := g.Snapshot().Score; got != expected {
			t.Fatalf("Score = %d after interval %d, expected %d", got, interval, expected)
		}
		advanceUntil(t, g, clock, 2, "cell idle", phaseOf(0, PhaseIdle))
	}

	stop(t, g)

	scores := rec.Scores()
	for i, s := range scores {
		if s != i {
			t.Fatalf("ScoreChanged sequence = %v, expected 0, 1, 2, ...", scores)
		}
	}
	if got := rec.Settled()[0].Score; got != expected {
		t.Errorf("result score = %d, expected %d", got, expected)
	}
}

func TestRoundEndForcesAllCellsIdle(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 2
	cfg.Cells = 10
	cfg.Columns = 5
	g, clock, rec := newTestGame(t, cfg)

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	step(t, clock, 1+cfg.Cells, cfg.Tick)
	waitUntil(t, "all cells active", func() bool {
		for _, c := range g.Snapshot().Cells {
			if c.Phase != PhaseActive {
				return false
			}
		}
		return true
	})
	for id := 0; id < 4; id++ {
		g.Activate(id)
	}

	step(t, clock, 1+cfg.Cells, cfg.Tick)
	waitUntil(t, "round end", func() bool { return len(rec.Ended()) == 1 })
	waitUntil(t, "cells terminated", func() bool {
		for _, c := range g.Snapshot().Cells {
			if c.Phase != PhaseTerminated {
				return false
			}
		}
		return true
	})

	if g.Activate(5) {
		t.Error("Activate() after round end should be ignored")
	}
	if got := g.Snapshot().Score; got != 4 {
		t.Errorf("Score = %d, expected 4", got)
	}

	// Still settling: Start stays rejected until the grace period passes
	blockUntil(t, clock, 1)
	if !g.Running() {
		t.Error("game should report running during the grace period")
	}
	if _, err := g.Start(); !errors.Is(err, ErrRoundActive) {
		t.Errorf("Start() during grace = %v, expected ErrRoundActive", err)
	}

	clock.Advance(cfg.units(cfg.Grace))
	waitSettled(t, g)

	if g.Running() {
		t.Error("game should not be running after settling")
	}
	for id := 0; id < cfg.Cells; id++ {
		v := rec.CellVisuals(id)
		if len(v) == 0 || v[len(v)-1] != VisualIdle {
			t.Errorf("cell %d final visual = %v, expected Idle", id, v)
		}
	}
}

func TestInterruptForcesCellsIdle(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 10
	cfg.Cells = 3
	saver := &savedResults{}
	g, clock, rec := newTestGame(t, cfg, WithResultSaver(saver))

	id, err := g.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	step(t, clock, 1+cfg.Cells, cfg.Tick)
	waitUntil(t, "cells active", func() bool { return phaseOf(2, PhaseActive)(g.Snapshot()) })
	g.Activate(2)

	stop(t, g)

	if got := rec.Interrupted(); len(got) != 1 || got[0] != id {
		t.Errorf("TimerInterrupted = %v, expected [%s]", got, id)
	}
	if n := len(rec.Ended()); n != 0 {
		t.Errorf("RoundEnded emitted %d times on interrupt, expected 0", n)
	}

	snap := g.Snapshot()
	if !snap.Finished || snap.TimeRemaining != 0 || snap.Timer != TimerInterrupted {
		t.Errorf("snapshot after interrupt = %+v", snap)
	}
	for _, c := range snap.Cells {
		if c.Phase != PhaseTerminated {
			t.Errorf("cell %d phase = %v, expected Terminated", c.ID, c.Phase)
		}
	}

	if len(saver.results) != 1 {
		t.Fatalf("saved %d results, expected 1", len(saver.results))
	}
	if r := saver.results[0]; !r.Interrupted || r.Score != 1 || r.ID != id {
		t.Errorf("saved result = %+v", r)
	}
}

func TestSaverErrorDoesNotBlockSettle(t *testing.T) {
	saver := &savedResults{err: errors.New("disk full")}
	g, _, rec := newTestGame(t, testConfig(), WithResultSaver(saver))

	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	stop(t, g)

	if len(rec.Settled()) != 1 || g.Running() {
		t.Error("round should settle even when saving fails")
	}
}

func TestSnapshotBeforeFirstRound(t *testing.T) {
	cfg := testConfig()
	cfg.Cells = 6
	g, _, _ := newTestGame(t, cfg)

	snap := g.Snapshot()
	if snap.Running || snap.Finished || snap.Score != 0 {
		t.Errorf("initial snapshot = %+v", snap)
	}
	if len(snap.Cells) != 6 {
		t.Errorf("initial snapshot has %d cells, expected 6", len(snap.Cells))
	}
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("Wait() with no round = %v", err)
	}
}

// Runs a full 40-cell round on the real clock with players hammering
// random cells, and checks the accounting end to end.
func TestRealClockRoundAccounting(t *testing.T) {
	cfg := Config{
		Duration:     40,
		Grace:        3,
		Tick:         time.Millisecond,
		Cells:        40,
		Columns:      8,
		IdleMin:      1,
		IdleMax:      4,
		ActiveWindow: 3,
		HitDelay:     2,
		Seed:         7,
	}
	rec := newRecorder()
	g, err := New(cfg, WithListener(rec))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := g.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	var (
		wg   sync.WaitGroup
		hits atomic.Int64
	)
	for p := range 8 {
		wg.Go(func() {
			rng := rand.New(rand.NewPCG(uint64(p), 1))
			for !g.Snapshot().Finished {
				if g.Activate(rng.IntN(cfg.Cells)) {
					hits.Add(1)
				}
			}
		})
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	result := rec.Settled()[0]
	if result.Score != int(hits.Load()) {
		t.Errorf("result score = %d, successful activations = %d", result.Score, hits.Load())
	}
	if g.Snapshot().Score != result.Score {
		t.Errorf("snapshot score %d differs from result %d", g.Snapshot().Score, result.Score)
	}

	times := rec.Times()
	if len(times) != cfg.Duration+1 || times[0] != cfg.Duration || times[len(times)-1] != 0 {
		t.Errorf("TimeChanged = %v, expected %d down to 0", times, cfg.Duration)
	}
	for i := 1; i < len(times); i++ {
		if times[i] != times[i-1]-1 {
			t.Fatalf("TimeChanged not strictly decreasing by one: %v", times)
		}
	}

	for _, c := range g.Snapshot().Cells {
		if c.Phase != PhaseTerminated {
			t.Errorf("cell %d phase = %v after settle", c.ID, c.Phase)
		}
	}
}
