package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-whack/internal/core"
	"github.com/vovakirdan/tui-whack/internal/games/whack"
	"github.com/vovakirdan/tui-whack/internal/storage"
)

// Status line texts.
const (
	statusReady    = "Press s to start"
	statusPlaying  = "Whack the moles!"
	statusBusy     = "Round still settling, hold on"
	statusTimeUp   = "Time's up!"
	statusStopped  = "Round stopped"
	statusSettled  = "Final score %d, %d missed. Press s to play again"
	statusNewBest  = "New best: %d! Press s to play again"
	eventBufferLen = 256
)

// NewGame creates a whack.Game that reports to a fresh ChannelListener and,
// when store is not nil, persists every settled round.
func NewGame(cfg whack.Config, store *storage.Store, logger *log.Logger, extra ...whack.Listener) (*whack.Game, *whack.ChannelListener, error) {
	events := whack.NewChannelListener(eventBufferLen)

	listeners := append(whack.MultiListener{events}, extra...)
	opts := []whack.Option{
		whack.WithListener(listeners),
	}
	if logger != nil {
		opts = append(opts, whack.WithLogger(logger))
	}
	if store != nil {
		opts = append(opts, whack.WithResultSaver(store))
	}

	game, err := whack.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return game, events, nil
}

// Model is the Bubble Tea model for playing whack.
type Model struct {
	game   *whack.Game
	events *whack.ChannelListener
	store  *storage.Store
	config core.RuntimeConfig
	screen *core.Screen
	layout whack.Layout
	keys   KeyMap
	help   help.Model

	cursor int
	best   int
	status string

	scoreboard *ScoreboardModel
	quitting   bool
}

// NewModel creates a model for game. events must be the listener the game
// reports to.
func NewModel(game *whack.Game, events *whack.ChannelListener, store *storage.Store, cfg core.RuntimeConfig) Model {
	m := Model{
		game:   game,
		events: events,
		store:  store,
		config: cfg,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		status: statusReady,
	}
	m.help.Width = cfg.ScreenW
	m.relayout()

	if store != nil {
		if best, err := store.HighScore(whack.GameID); err == nil {
			m.best = best
		}
	}
	return m
}

// relayout fits the board into the rows left over by the help bar.
func (m *Model) relayout() {
	helpRows := 1
	if m.help.ShowAll {
		for _, col := range m.keys.FullHelp() {
			helpRows = core.Max(helpRows, len(col))
		}
	}
	m.screen.Resize(m.config.ScreenW, core.Max(m.config.ScreenH-helpRows, 0))

	gc := m.game.Config()
	m.layout = whack.NewLayout(gc.Cells, gc.Columns, m.screen.Width(), m.screen.Height())
}

// Init starts the repaint loop and the event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.config.TickRate),
		waitForEvent(m.events),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.scoreboard != nil {
		return m.updateScoreboard(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleAction(m.keys.Action(msg))

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case eventMsg:
		m.handleEvent(msg.evt)
		return m, waitForEvent(m.events)

	case TickMsg:
		return m, tickCmd(m.config.TickRate)
	}

	return m, nil
}

func (m Model) handleAction(a core.Action) (tea.Model, tea.Cmd) {
	switch a {
	case core.ActionQuit:
		m.quitting = true
		m.game.Interrupt()
		m.events.Close()
		return m, tea.Quit

	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		m.cursor = m.layout.Move(m.cursor, a)

	case core.ActionWhack:
		m.whack(m.cursor)

	case core.ActionStart:
		m.start()

	case core.ActionScores:
		sb := NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
		sb.embedded = true
		m.scoreboard = &sb

	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		m.relayout()
	}
	return m, nil
}

func (m *Model) start() {
	_, err := m.game.Start()
	switch {
	case errors.Is(err, whack.ErrRoundActive):
		m.status = statusBusy
	case err != nil:
		m.status = err.Error()
	default:
		m.status = statusPlaying
	}
}

func (m *Model) whack(cell int) {
	if !m.game.Running() {
		m.status = statusReady
		return
	}
	m.game.Activate(cell)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if cell, ok := m.layout.CellAt(msg.X, msg.Y); ok {
		m.cursor = cell
		m.whack(cell)
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.help.Width = msg.Width
	m.relayout()
	return m, nil
}

func (m *Model) handleEvent(evt whack.Event) {
	switch e := evt.(type) {
	case whack.RoundEndedEvent:
		m.status = statusTimeUp
	case whack.TimerInterruptedEvent:
		m.status = statusStopped
	case whack.RoundSettledEvent:
		r := e.Result
		if !r.Interrupted && r.Score > m.best {
			m.best = r.Score
			m.status = fmt.Sprintf(statusNewBest, r.Score)
			return
		}
		m.status = fmt.Sprintf(statusSettled, r.Score, r.Misses())
	}
}

func (m Model) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Game events keep flowing while the board is open
	switch msg := msg.(type) {
	case eventMsg:
		m.handleEvent(msg.evt)
		return m, waitForEvent(m.events)
	case TickMsg:
		return m, tickCmd(m.config.TickRate)
	case tea.WindowSizeMsg:
		next, _ := m.handleResize(msg)
		m = next.(Model)
	}

	updated, cmd := m.scoreboard.Update(msg)
	sb := updated.(ScoreboardModel)
	switch {
	case sb.IsQuitting():
		return m.handleAction(core.ActionQuit)
	case sb.IsGoingBack():
		m.scoreboard = nil
		return m, nil
	}
	m.scoreboard = &sb
	return m, cmd
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.scoreboard != nil {
		return m.scoreboard.View()
	}

	whack.Render(m.screen, m.game.Snapshot(), m.layout, whack.View{
		Cursor: m.cursor,
		Best:   m.best,
		Status: m.status,
	})

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Run starts the Bubble Tea program and blocks until the player quits.
func Run(game *whack.Game, events *whack.ChannelListener, store *storage.Store, cfg core.RuntimeConfig) error {
	model := NewModel(game, events, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
