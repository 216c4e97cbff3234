package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// Variant is a board layout and its special rules.
type Variant uint8

const (
	// Standard is two-player chess on an 8x8 board.
	Standard Variant = iota
	// FourPlayer is played on a 14x14 board without its 3x3 corners.
	FourPlayer
	// Shrinking is standard chess on a board that loses empty border cells.
	Shrinking
	// Armada is two-player chess on an 8x10 board with ships in the corners.
	Armada
)

// Variants lists every variant.
var Variants = []Variant{Standard, FourPlayer, Shrinking, Armada}

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Standard:
		return "standard"
	case FourPlayer:
		return "four-player"
	case Shrinking:
		return "shrinking"
	case Armada:
		return "armada"
	default:
		return fmt.Sprintf("variant(%d)", v)
	}
}

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if v.String() == s {
			return v, nil
		}
	}
	return Standard, fmt.Errorf("%w: %s", ErrUnknownVariant, s)
}

// DefaultShrinkEvery is the number of rounds between two shrinks.
const DefaultShrinkEvery = 10

// maxShrinkDepth bounds how many rings the Shrinking board loses.
const maxShrinkDepth = 2

var backRank = []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

var armadaRank = []Kind{Ship, Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook, Ship}

// Setup creates the starting state of the variant.
func (v Variant) Setup() *State {
	switch v {
	case FourPlayer:
		return setupFourPlayer()
	case Armada:
		return setupTwoPlayer(8, 10, armadaRank)
	default:
		return setupTwoPlayer(8, 8, backRank)
	}
}

// setup places pieces for players while handing out unique ids.
type setup struct {
	nextID int
}

// line puts kinds on consecutive cells from start, stepping by (dRow, dCol).
func (su *setup) line(pl *Player, kinds []Kind, start board.Position, dRow, dCol int) {
	pos := start
	for _, k := range kinds {
		pl.AddPiece(NewPiece(su.nextID, k, pos))
		su.nextID++
		pos = pos.Add(dRow, dCol)
	}
}

func pawns(n int) []Kind {
	out := make([]Kind, n)
	for i := range out {
		out[i] = Pawn
	}
	return out
}

func setupTwoPlayer(rows, cols int, rank []Kind) *State {
	white := NewPlayer(0, "White", board.Up)
	black := NewPlayer(1, "Black", board.Down)

	su := &setup{}
	su.line(white, rank, board.NewPosition(rows-1, 0), 0, 1)
	su.line(white, pawns(cols), board.NewPosition(rows-2, 0), 0, 1)
	su.line(black, rank, board.NewPosition(0, 0), 0, 1)
	su.line(black, pawns(cols), board.NewPosition(1, 0), 0, 1)

	return NewState(board.NewGrid(rows, cols), white, black)
}

func setupFourPlayer() *State {
	const size, corner = 14, 3

	g := board.NewGrid(size, size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			inRows := r < corner || r >= size-corner
			inCols := c < corner || c >= size-corner
			if inRows && inCols {
				g.MarkAbsent(g.Index(board.NewPosition(r, c)))
			}
		}
	}

	red := NewPlayer(0, "Red", board.Up)
	blue := NewPlayer(1, "Blue", board.Right)
	yellow := NewPlayer(2, "Yellow", board.Down)
	green := NewPlayer(3, "Green", board.Left)

	su := &setup{}
	su.line(red, backRank, board.NewPosition(size-1, corner), 0, 1)
	su.line(red, pawns(8), board.NewPosition(size-2, corner), 0, 1)
	su.line(blue, backRank, board.NewPosition(corner, 0), 1, 0)
	su.line(blue, pawns(8), board.NewPosition(corner, 1), 1, 0)
	su.line(yellow, backRank, board.NewPosition(0, size-1-corner), 0, -1)
	su.line(yellow, pawns(8), board.NewPosition(1, size-1-corner), 0, -1)
	su.line(green, backRank, board.NewPosition(size-1-corner, size-1), -1, 0)
	su.line(green, pawns(8), board.NewPosition(size-1-corner, size-2), -1, 0)

	return NewState(g, red, blue, yellow, green)
}

// shrink removes the empty cells of the next border ring when a round
// divisible by every begins. It returns the removed cell indices.
func shrink(s *State, every int) []int {
	if every <= 0 || s.Round == 0 || s.Round%every != 0 {
		return nil
	}
	depth := s.Round/every - 1
	if depth > maxShrinkDepth {
		return nil
	}
	var removed []int
	for _, pos := range s.Board.Ring(depth) {
		if s.PieceAt(pos) == nil {
			idx := s.Board.Index(pos)
			s.Board.MarkAbsent(idx)
			removed = append(removed, idx)
		}
	}
	return removed
}

// FarEdge reports whether p stands on the outermost row or column that
// still has a cell, in the direction its owner faces.
func (s *State) FarEdge(p *Piece) bool {
	g := s.Board
	edge := -1
	for _, pos := range g.Cells() {
		var v int
		switch p.Owner.Direction {
		case board.Up:
			v = g.Rows - 1 - pos.Row
		case board.Down:
			v = pos.Row
		case board.Left:
			v = g.Columns - 1 - pos.Col
		case board.Right:
			v = pos.Col
		}
		edge = max(edge, v)
	}
	switch p.Owner.Direction {
	case board.Up:
		return g.Rows-1-p.Position.Row == edge
	case board.Down:
		return p.Position.Row == edge
	case board.Left:
		return g.Columns-1-p.Position.Col == edge
	default:
		return p.Position.Col == edge
	}
}
