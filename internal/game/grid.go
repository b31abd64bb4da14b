package game

import (
	"strings"

	"tetris-duel/internal/piece"
)

// Grid holds locked cells. Row 0 is the top.
type Grid struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Cells  [][]piece.Kind `json:"cells"`
}

func NewGrid(width, height int) Grid {
	if width <= 0 {
		width = 10
	}
	if height <= 0 {
		height = 20
	}
	c := make([][]piece.Kind, height)
	for i := range c {
		c[i] = make([]piece.Kind, width)
	}
	return Grid{Width: width, Height: height, Cells: c}
}

func (g Grid) Clone() Grid {
	c := make([][]piece.Kind, len(g.Cells))
	for i, row := range g.Cells {
		c[i] = append([]piece.Kind(nil), row...)
	}
	return Grid{Width: g.Width, Height: g.Height, Cells: c}
}

func (g Grid) In(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

func (g Grid) At(row, col int) piece.Kind {
	return g.Cells[row][col]
}

// Collides reports whether m anchored at (row, col) leaves the grid or
// covers an occupied cell. It never fails.
func (g Grid) Collides(m piece.Matrix, row, col int) bool {
	for i, line := range m {
		for j, filled := range line {
			if !filled {
				continue
			}
			r, c := row+i, col+j
			if !g.In(r, c) {
				return true
			}
			if g.Cells[r][c] != piece.Empty {
				return true
			}
		}
	}
	return false
}

// Stamp writes the filled cells of m into the grid as kind. Cells outside
// the grid are dropped.
func (g Grid) Stamp(m piece.Matrix, row, col int, kind piece.Kind) {
	for i, line := range m {
		for j, filled := range line {
			if filled && g.In(row+i, col+j) {
				g.Cells[row+i][col+j] = kind
			}
		}
	}
}

func (g Grid) rowFull(r int) bool {
	for _, k := range g.Cells[r] {
		if k == piece.Empty {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row, scanning bottom to top. After a
// removal the same index is examined again because the row shifted into
// it may be full as well. It returns the number of rows removed.
func (g Grid) ClearFullRows() int {
	cleared := 0
	r := g.Height - 1
	for r >= 0 {
		if !g.rowFull(r) {
			r--
			continue
		}
		cleared++
		for k := r; k > 0; k-- {
			copy(g.Cells[k], g.Cells[k-1])
		}
		for c := range g.Cells[0] {
			g.Cells[0][c] = piece.Empty
		}
	}
	return cleared
}

// Heights returns, per column, the distance from the bottom to the topmost
// occupied cell (0 for an empty column).
func (g Grid) Heights() []int {
	h := make([]int, g.Width)
	for c := 0; c < g.Width; c++ {
		for r := 0; r < g.Height; r++ {
			if g.Cells[r][c] != piece.Empty {
				h[c] = g.Height - r
				break
			}
		}
	}
	return h
}

// Holes counts empty cells that have an occupied cell above them in the
// same column.
func (g Grid) Holes() int {
	holes := 0
	for c := 0; c < g.Width; c++ {
		seen := false
		for r := 0; r < g.Height; r++ {
			if g.Cells[r][c] != piece.Empty {
				seen = true
			} else if seen {
				holes++
			}
		}
	}
	return holes
}

func (g Grid) String() string {
	var sb strings.Builder
	for _, row := range g.Cells {
		for _, k := range row {
			if k == piece.Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteString(k.String()[:1])
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
