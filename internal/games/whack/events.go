package whack

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Visual is what the display shows for a cell.
type Visual int

const (
	VisualIdle   Visual = iota // Blank, gray
	VisualActive               // Mole up, hittable
	VisualHit                  // Mole was hit
)

func (v Visual) String() string {
	switch v {
	case VisualIdle:
		return "Idle"
	case VisualActive:
		return "Active"
	case VisualHit:
		return "Hit"
	default:
		return "Unknown"
	}
}

// Listener receives push notifications from a running game.
//
// Methods are called from the round's goroutines, possibly concurrently and
// while a cell holds its lock. Implementations must be safe for concurrent
// use, must not block, and must not call back into the Game.
type Listener interface {
	TimeChanged(remaining int)
	ScoreChanged(score int)
	CellChanged(cellID int, v Visual)
	RoundEnded(id RoundID)
	RoundSettled(result RoundResult)
	TimerInterrupted(id RoundID)
}

// NopListener ignores every notification. Embed it to implement only the
// methods you care about.
type NopListener struct{}

func (NopListener) TimeChanged(int)          {}
func (NopListener) ScoreChanged(int)         {}
func (NopListener) CellChanged(int, Visual)  {}
func (NopListener) RoundEnded(RoundID)       {}
func (NopListener) RoundSettled(RoundResult) {}
func (NopListener) TimerInterrupted(RoundID) {}

// MultiListener fans every notification out to each listener in order.
type MultiListener []Listener

func (m MultiListener) TimeChanged(remaining int) {
	for _, l := range m {
		l.TimeChanged(remaining)
	}
}

func (m MultiListener) ScoreChanged(score int) {
	for _, l := range m {
		l.ScoreChanged(score)
	}
}

func (m MultiListener) CellChanged(cellID int, v Visual) {
	for _, l := range m {
		l.CellChanged(cellID, v)
	}
}

func (m MultiListener) RoundEnded(id RoundID) {
	for _, l := range m {
		l.RoundEnded(id)
	}
}

func (m MultiListener) RoundSettled(result RoundResult) {
	for _, l := range m {
		l.RoundSettled(result)
	}
}

func (m MultiListener) TimerInterrupted(id RoundID) {
	for _, l := range m {
		l.TimerInterrupted(id)
	}
}

// Event is a notification in value form, for consumers that prefer a channel.
type Event interface {
	whackEvent()
}

// TimeChangedEvent is sent once per unit while the round timer runs.
type TimeChangedEvent struct {
	Remaining int
}

func (TimeChangedEvent) whackEvent() {}

// ScoreChangedEvent is sent after every successful hit.
type ScoreChangedEvent struct {
	Score int
}

func (ScoreChangedEvent) whackEvent() {}

// CellChangedEvent is sent when a cell's visual state flips.
type CellChangedEvent struct {
	Cell   int
	Visual Visual
}

func (CellChangedEvent) whackEvent() {}

// RoundEndedEvent is sent when the timer reaches zero.
type RoundEndedEvent struct {
	Round RoundID
}

func (RoundEndedEvent) whackEvent() {}

// RoundSettledEvent is sent once all cells are idle and Start is available again.
type RoundSettledEvent struct {
	Result RoundResult
}

func (RoundSettledEvent) whackEvent() {}

// TimerInterruptedEvent is sent when a round is cut short.
type TimerInterruptedEvent struct {
	Round RoundID
}

func (TimerInterruptedEvent) whackEvent() {}

// ChannelListener turns notifications into Events on a buffered channel.
// Sends never block: when the buffer is full the oldest event is dropped.
type ChannelListener struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelListener creates a listener with the given buffer size.
func NewChannelListener(bufferSize int) *ChannelListener {
	if bufferSize < 1 {
		bufferSize = 256
	}
	return &ChannelListener{
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Events returns the channel to receive events from.
func (c *ChannelListener) Events() <-chan Event {
	return c.events
}

// Done is closed by Close.
func (c *ChannelListener) Done() <-chan struct{} {
	return c.done
}

// Close stops delivery. Safe to call multiple times.
func (c *ChannelListener) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *ChannelListener) send(evt Event) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.events <- evt:
	default:
		// Buffer full, drop oldest and retry once
		select {
		case <-c.events:
		default:
		}
		select {
		case c.events <- evt:
		default:
		}
	}
}

func (c *ChannelListener) TimeChanged(remaining int) {
	c.send(TimeChangedEvent{Remaining: remaining})
}

func (c *ChannelListener) ScoreChanged(score int) {
	c.send(ScoreChangedEvent{Score: score})
}

func (c *ChannelListener) CellChanged(cellID int, v Visual) {
	c.send(CellChangedEvent{Cell: cellID, Visual: v})
}

func (c *ChannelListener) RoundEnded(id RoundID) {
	c.send(RoundEndedEvent{Round: id})
}

func (c *ChannelListener) RoundSettled(result RoundResult) {
	c.send(RoundSettledEvent{Result: result})
}

func (c *ChannelListener) TimerInterrupted(id RoundID) {
	c.send(TimerInterruptedEvent{Round: id})
}

// LogListener writes round milestones to a logger. Cell flips are logged at
// debug level only.
type LogListener struct {
	Logger *log.Logger
}

func (l LogListener) TimeChanged(remaining int) {
	l.Logger.Debug("time", "remaining", remaining)
}

func (l LogListener) ScoreChanged(score int) {
	l.Logger.Info("score", "score", score)
}

func (l LogListener) CellChanged(cellID int, v Visual) {
	l.Logger.Debug("cell", "cell", cellID, "visual", v)
}

func (l LogListener) RoundEnded(id RoundID) {
	l.Logger.Info("time is up", "round", id)
}

func (l LogListener) RoundSettled(result RoundResult) {
	l.Logger.Info("round settled",
		"round", result.ID,
		"score", result.Score,
		"attempts", result.Attempts,
		"interrupted", result.Interrupted,
	)
}

func (l LogListener) TimerInterrupted(id RoundID) {
	l.Logger.Warn("round timer interrupted", "round", id)
}

var (
	_ Listener = NopListener{}
	_ Listener = MultiListener(nil)
	_ Listener = (*ChannelListener)(nil)
	_ Listener = LogListener{}
)
