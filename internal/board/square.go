// Package board implements board geometry for grid chess variants:
// cell positions, direction-relative translations and boards with holes.
package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Position identifies a board cell by row and column.
// Row 0 is the top edge of the board, column 0 the left edge.
type Position struct {
	Row int
	Col int
}

// NoPosition is returned where no cell applies.
var NoPosition = Position{Row: -1, Col: -1}

// NewPosition creates a position from row and column.
func NewPosition(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Add returns the position displaced by the given absolute row and column deltas.
func (p Position) Add(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// String returns the "row,col" form of the position.
func (p Position) String() string {
	if p == NoPosition {
		return "-"
	}
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// ParsePosition parses the "row,col" form produced by String.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return NoPosition, fmt.Errorf("invalid position: %s", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return NoPosition, fmt.Errorf("invalid position row: %s", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return NoPosition, fmt.Errorf("invalid position column: %s", s)
	}
	return NewPosition(row, col), nil
}
