// Package tui provides the Bubble Tea front end for the whack game.
// It handles the terminal UI loop, input mapping, and SSH serving.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-whack/internal/games/whack"
)

// TickMsg is sent to trigger a repaint.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 30
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// eventMsg carries a game notification into the Bubble Tea loop.
type eventMsg struct {
	evt whack.Event
}

// waitForEvent blocks until the next game event. It returns nil once the
// listener is closed so the subscription ends.
func waitForEvent(l *whack.ChannelListener) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-l.Events():
			return eventMsg{evt: evt}
		case <-l.Done():
			return nil
		}
	}
}
