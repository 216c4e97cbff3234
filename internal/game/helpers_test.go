package game

import (
	"testing"

	"github.com/hailam/chessrules/internal/board"
)

// parseBoard builds a two-player state from text rows. Uppercase letters
// belong to White (facing up), lowercase to Black (facing down); '.' is an
// empty cell and '#' an absent one. White moves first.
func parseBoard(t *testing.T, rows ...string) *State {
	t.Helper()

	g := board.NewGrid(len(rows), len(rows[0]))
	white := NewPlayer(0, "White", board.Up)
	black := NewPlayer(1, "Black", board.Down)

	id := 0
	for r, line := range rows {
		if len(line) != g.Columns {
			t.Fatalf("row %d has %d cells, want %d", r, len(line), g.Columns)
		}
		for c := 0; c < len(line); c++ {
			ch := line[c]
			pos := board.NewPosition(r, c)
			switch {
			case ch == '.':
				continue
			case ch == '#':
				g.MarkAbsent(g.Index(pos))
				continue
			}
			owner := black
			if ch >= 'A' && ch <= 'Z' {
				owner = white
				ch += 'a' - 'A'
			}
			k, err := ParseKind(string(ch))
			if err != nil {
				t.Fatalf("row %d col %d: %v", r, c, err)
			}
			owner.AddPiece(NewPiece(id, k, pos))
			id++
		}
	}
	return NewState(g, white, black)
}

func pos(row, col int) board.Position {
	return board.NewPosition(row, col)
}

// mustPiece returns the piece on p or fails the test.
func mustPiece(t *testing.T, s *State, p board.Position) *Piece {
	t.Helper()
	piece := s.PieceAt(p)
	if piece == nil {
		t.Fatalf("no piece at %v", p)
	}
	return piece
}

// mustMove plays a move that has to be legal.
func mustMove(t *testing.T, g *Game, from, to board.Position) Result {
	t.Helper()
	res, err := g.Move(from, to)
	if err != nil {
		t.Fatalf("Move(%v, %v) failed: %v", from, to, err)
	}
	if !res.Legal {
		t.Fatalf("Move(%v, %v) rejected by %s", from, to, res.Failed)
	}
	return res
}

// answerChooser answers every question synchronously.
type answerChooser struct {
	rook  int
	promo Kind
}

func (c answerChooser) ChooseRook(_ *State, opts []RookOption) (int, bool) {
	return c.rook, true
}

func (c answerChooser) ChoosePromotion(*State, *Piece) (Kind, bool) {
	return c.promo, true
}
