package whack

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Phase is a cell controller's state.
type Phase int32

const (
	PhaseIdle       Phase = iota // Waiting for a random delay
	PhaseActive                  // Hittable
	PhaseHitPending              // Hit recorded, marker showing
	PhaseTerminated              // Round over, loop stopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseActive:
		return "Active"
	case PhaseHitPending:
		return "HitPending"
	case PhaseTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Visual maps the phase onto what the display shows.
func (p Phase) Visual() Visual {
	switch p {
	case PhaseActive:
		return VisualActive
	case PhaseHitPending:
		return VisualHit
	default:
		return VisualIdle
	}
}

// cell drives one grid position through Idle -> Active -> HitPending -> Idle
// until the round ends.
type cell struct {
	id    int
	round *round
	rng   *rand.Rand

	// mu serializes phase transitions so that a hit and the natural expiry
	// of the same Active period cannot both happen.
	mu    sync.Mutex
	phase atomic.Int32 // written under mu, read lock-free by snapshots

	// hit carries at most one token: it is filled by activate on the
	// Active -> HitPending transition and drained by run.
	hit chan struct{}
}

func newCell(id int, r *round, seed int64) *cell {
	return &cell{
		id:    id,
		round: r,
		rng:   rand.New(rand.NewPCG(uint64(seed), uint64(id))),
		hit:   make(chan struct{}, 1),
	}
}

// Phase returns the current phase without blocking.
func (c *cell) Phase() Phase {
	return Phase(c.phase.Load())
}

// setPhase must be called with c.mu held.
func (c *cell) setPhase(p Phase) {
	old := Phase(c.phase.Swap(int32(p)))
	if old.Visual() != p.Visual() {
		c.round.listener.CellChanged(c.id, p.Visual())
	}
}

// activate records a hit if the cell is currently Active.
// Returns false, with no side effects, in any other phase.
func (c *cell) activate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Phase() != PhaseActive || c.round.finished.Load() {
		return false
	}
	c.setPhase(PhaseHitPending)
	c.round.recordHit(c.id)

	select {
	case c.hit <- struct{}{}:
	default:
	}
	return true
}

// run is the cell's background loop. It returns once ctx is cancelled or
// the round is finished, always leaving the cell idle.
func (c *cell) run(ctx context.Context) {
	defer c.terminate()

	cfg := c.round.cfg
	for {
		if !c.round.wait(ctx, cfg.units(c.idleDelay())) {
			return
		}
		if !c.rise(ctx) {
			return
		}

		window := c.round.clock.NewTimer(cfg.units(cfg.ActiveWindow))
		select {
		case <-ctx.Done():
			window.Stop()
			return
		case <-c.hit:
			window.Stop()
		case <-window.Chan():
			if c.expire() {
				continue
			}
			// A hit landed between the window closing and expire taking the lock.
			select {
			case <-c.hit:
			default:
			}
		}

		if !c.round.wait(ctx, cfg.units(cfg.HitDelay)) {
			return
		}
		c.lower()
	}
}

// idleDelay picks a uniform delay in [IdleMin, IdleMax] units.
func (c *cell) idleDelay() int {
	cfg := c.round.cfg
	return cfg.IdleMin + c.rng.IntN(cfg.IdleMax-cfg.IdleMin+1)
}

func (c *cell) rise(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil || c.round.finished.Load() {
		return false
	}
	c.setPhase(PhaseActive)
	return true
}

// expire ends an Active period that was not hit.
func (c *cell) expire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Phase() != PhaseActive {
		return false
	}
	c.setPhase(PhaseIdle)
	return true
}

func (c *cell) lower() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Phase() == PhaseHitPending {
		c.setPhase(PhaseIdle)
	}
}

func (c *cell) terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setPhase(PhaseTerminated)
}
