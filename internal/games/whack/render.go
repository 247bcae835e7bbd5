package whack

import (
	"fmt"

	"github.com/vovakirdan/tui-whack/internal/core"
)

// Cell box dimensions, borders included.
const (
	CellWidth  = 7
	CellHeight = 3

	hudRows    = 2
	footerRows = 2
)

// Faces drawn inside a cell.
const (
	ActiveFace = ":-)"
	HitFace    = ":-("
)

// Layout places cells on a screen in a centered grid.
type Layout struct {
	Columns int
	Rows    int
	Board   core.Rect
	Cells   []core.Rect
}

// NewLayout computes cell rectangles for the given screen size.
func NewLayout(cells, columns, screenW, screenH int) Layout {
	columns = core.Clamp(columns, 1, core.Max(cells, 1))
	rows := (cells + columns - 1) / columns

	w := columns * CellWidth
	h := rows * CellHeight
	x0 := core.Max((screenW-w)/2, 0)
	y0 := hudRows

	l := Layout{
		Columns: columns,
		Rows:    rows,
		Board:   core.NewRect(x0, y0, w, h),
		Cells:   make([]core.Rect, cells),
	}
	for i := range l.Cells {
		col, row := i%columns, i/columns
		l.Cells[i] = core.NewRect(x0+col*CellWidth, y0+row*CellHeight, CellWidth, CellHeight)
	}
	return l
}

// Fits reports whether the whole board plus HUD and footer fit on screen.
func (l Layout) Fits(screenW, screenH int) bool {
	return l.Board.Right() <= screenW && l.Board.Bottom()+footerRows <= screenH
}

// CellAt returns the cell under screen position (x, y).
func (l Layout) CellAt(x, y int) (int, bool) {
	if !l.Board.Contains(x, y) {
		return 0, false
	}
	for i, r := range l.Cells {
		if r.Contains(x, y) {
			return i, true
		}
	}
	return 0, false
}

// Move returns the cursor position after a directional action.
// Moves that would leave the board keep the cursor where it is.
func (l Layout) Move(cursor int, a core.Action) int {
	n := len(l.Cells)
	switch a {
	case core.ActionUp:
		if cursor-l.Columns >= 0 {
			return cursor - l.Columns
		}
	case core.ActionDown:
		if cursor+l.Columns < n {
			return cursor + l.Columns
		}
	case core.ActionLeft:
		if cursor%l.Columns > 0 {
			return cursor - 1
		}
	case core.ActionRight:
		if cursor%l.Columns < l.Columns-1 && cursor+1 < n {
			return cursor + 1
		}
	}
	return cursor
}

// View carries display-only state that is not part of the game.
type View struct {
	Cursor int
	Best   int
	Status string
}

// Render draws the snapshot into dst.
func Render(dst *core.Screen, snap Snapshot, l Layout, v View) {
	dst.Clear()

	if !l.Fits(dst.Width(), dst.Height()) {
		y := dst.Height() / 2
		dst.DrawTextCentered(y, "Window too small", core.ColorYellow)
		dst.DrawTextCentered(y+1, "Please resize terminal", core.ColorGray)
		return
	}

	hud := fmt.Sprintf("Time Left: %3d   Score: %3d   Best: %3d", snap.TimeRemaining, snap.Score, v.Best)
	timeColor := core.ColorBrightWhite
	if snap.Timer == TimerRunning {
		timeColor = core.ColorBrightRed
	}
	dst.DrawTextCentered(0, hud, timeColor)

	for i, c := range snap.Cells {
		if i >= len(l.Cells) {
			break
		}
		renderCell(dst, l.Cells[i], c.Phase.Visual(), i == v.Cursor)
	}

	if v.Status != "" {
		dst.DrawTextCentered(l.Board.Bottom()+1, v.Status, core.ColorCyan)
	}
}

func renderCell(dst *core.Screen, r core.Rect, vis Visual, selected bool) {
	boxColor := core.ColorGray
	face, faceColor := "", core.ColorDefault
	switch vis {
	case VisualActive:
		boxColor, face, faceColor = core.ColorGreen, ActiveFace, core.ColorBrightGreen
	case VisualHit:
		boxColor, face, faceColor = core.ColorRed, HitFace, core.ColorBrightRed
	}
	if selected {
		boxColor = core.ColorYellow
	}

	dst.DrawBox(r, boxColor)
	if face != "" {
		x := r.X + (r.W-len(face))/2
		dst.DrawTextColor(x, r.Y+r.H/2, face, faceColor)
	}
}
