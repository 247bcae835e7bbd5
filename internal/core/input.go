package core

// Action represents a semantic player intent, abstracted from physical keys.
type Action int

const (
	ActionNone   Action = iota
	ActionUp            // Move the cursor up
	ActionDown          // Move the cursor down
	ActionLeft          // Move the cursor left
	ActionRight         // Move the cursor right
	ActionWhack         // Hit the cell under the cursor
	ActionStart         // Start a round
	ActionScores        // Open the scoreboard
	ActionHelp          // Toggle full help
	ActionQuit          // Leave the game
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionWhack:
		return "Whack"
	case ActionStart:
		return "Start"
	case ActionScores:
		return "Scores"
	case ActionHelp:
		return "Help"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
