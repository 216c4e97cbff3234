package board

import (
	"fmt"
	"sort"
	"strings"
)

// Grid is a rectangular board whose cells can be absent.
// Absent cells are holes in the board shape or cells removed during play.
type Grid struct {
	Rows    int
	Columns int
	absent  []bool
}

// NewGrid creates a grid with every cell present.
func NewGrid(rows, columns int) *Grid {
	if rows <= 0 || columns <= 0 {
		panic(fmt.Sprintf("board: invalid grid size %dx%d", rows, columns))
	}
	return &Grid{
		Rows:    rows,
		Columns: columns,
		absent:  make([]bool, rows*columns),
	}
}

// Copy creates a deep copy of the grid.
func (g *Grid) Copy() *Grid {
	newGrid := *g
	newGrid.absent = make([]bool, len(g.absent))
	copy(newGrid.absent, g.absent)
	return &newGrid
}

// Size returns the number of cell indices, present or not.
func (g *Grid) Size() int {
	return g.Rows * g.Columns
}

// Index returns the cell index of a position.
func (g *Grid) Index(p Position) int {
	return p.Row*g.Columns + p.Col
}

// Position returns the position of a cell index.
func (g *Grid) Position(index int) Position {
	return Position{Row: index / g.Columns, Col: index % g.Columns}
}

// IsValidCell returns true if the index is in range and not absent.
func (g *Grid) IsValidCell(index int) bool {
	return index >= 0 && index < len(g.absent) && !g.absent[index]
}

// Contains returns true if the position lies on a present cell.
func (g *Grid) Contains(p Position) bool {
	if p.Row < 0 || p.Row >= g.Rows || p.Col < 0 || p.Col >= g.Columns {
		return false
	}
	return g.IsValidCell(g.Index(p))
}

// MarkAbsent removes a cell from the board permanently.
// Out of range indices are ignored.
func (g *Grid) MarkAbsent(index int) {
	if index >= 0 && index < len(g.absent) {
		g.absent[index] = true
	}
}

// Absent returns the sorted indices of absent cells.
func (g *Grid) Absent() []int {
	var out []int
	for i, gone := range g.absent {
		if gone {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Cells returns the positions of every present cell in index order.
func (g *Grid) Cells() []Position {
	cells := make([]Position, 0, len(g.absent))
	for i := range g.absent {
		if !g.absent[i] {
			cells = append(cells, g.Position(i))
		}
	}
	return cells
}

// Ring returns the present cells at the given distance from the outer edge.
// Depth 0 is the outermost ring.
func (g *Grid) Ring(depth int) []Position {
	var out []Position
	for _, p := range g.Cells() {
		d := min(p.Row, p.Col, g.Rows-1-p.Row, g.Columns-1-p.Col)
		if d == depth {
			out = append(out, p)
		}
	}
	return out
}

// String returns a map of the grid with '#' for absent cells.
func (g *Grid) String() string {
	var sb strings.Builder
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Columns; c++ {
			if g.absent[r*g.Columns+c] {
				sb.WriteString("# ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
