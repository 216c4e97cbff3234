package game

import (
	"fmt"
	"strings"

	"github.com/hailam/chessrules/internal/board"
)

// State is the authoritative game state: board, players and turn counters.
type State struct {
	Board   *board.Grid
	Players []*Player

	// Selected is the piece picked this turn, nil while awaiting selection.
	Selected *Piece

	Turn         int
	Round        int
	FirstInRound int
}

// NewState creates a state for the given board and players.
// It panics if the pieces break a board invariant.
func NewState(g *board.Grid, players ...*Player) *State {
	s := &State{Board: g, Players: players}
	s.mustValidate()
	return s
}

// Snapshot returns a structurally independent copy of the state.
// Pieces keep their ids so live pieces can be matched in the copy.
// The selection is not copied.
func (s *State) Snapshot() *State {
	snap := &State{
		Board:        s.Board.Copy(),
		Players:      make([]*Player, len(s.Players)),
		Turn:         s.Turn,
		Round:        s.Round,
		FirstInRound: s.FirstInRound,
	}
	for i, pl := range s.Players {
		np := &Player{
			ID:         pl.ID,
			Name:       pl.Name,
			Direction:  pl.Direction,
			Eliminated: pl.Eliminated,
			Pieces:     make([]*Piece, 0, len(pl.Pieces)),
		}
		for _, p := range pl.Pieces {
			np.AddPiece(p.copyPiece())
		}
		snap.Players[i] = np
	}
	return snap
}

// Player returns the player with the given id, or nil.
func (s *State) Player(id int) *Player {
	for _, pl := range s.Players {
		if pl.ID == id {
			return pl
		}
	}
	return nil
}

// Current returns the player whose turn it is.
func (s *State) Current() *Player {
	return s.Players[s.Turn]
}

// PieceAt returns the piece on pos, or nil if the cell is empty.
func (s *State) PieceAt(pos board.Position) *Piece {
	for _, pl := range s.Players {
		for _, p := range pl.Pieces {
			if p.Position == pos {
				return p
			}
		}
	}
	return nil
}

// Piece returns the piece with the given id, or nil if it was captured.
func (s *State) Piece(id int) *Piece {
	for _, pl := range s.Players {
		for _, p := range pl.Pieces {
			if p.ID == id {
				return p
			}
		}
	}
	return nil
}

// IsVacant returns true if pos is a present cell without a piece.
func (s *State) IsVacant(pos board.Position) bool {
	return s.Board.Contains(pos) && s.PieceAt(pos) == nil
}

// Opponents returns the active players other than pl.
func (s *State) Opponents(pl *Player) []*Player {
	var out []*Player
	for _, o := range s.Players {
		if o.ID != pl.ID && !o.Eliminated {
			out = append(out, o)
		}
	}
	return out
}

// ActivePlayers returns the number of players not eliminated.
func (s *State) ActivePlayers() int {
	n := 0
	for _, pl := range s.Players {
		if !pl.Eliminated {
			n++
		}
	}
	return n
}

// removeAt removes the piece on pos from its owner and returns it.
func (s *State) removeAt(pos board.Position) *Piece {
	p := s.PieceAt(pos)
	if p == nil {
		return nil
	}
	return p.Owner.RemovePiece(p.ID)
}

// ApplyMove moves the piece with the given id to dest, removing the
// occupant of dest first when removeOccupant is set. It returns the
// captured piece, if any.
func (s *State) ApplyMove(pieceID int, dest board.Position, removeOccupant bool) *Piece {
	p := s.Piece(pieceID)
	if p == nil {
		panic(fmt.Sprintf("game: move of unknown piece %d", pieceID))
	}
	var captured *Piece
	if removeOccupant {
		if occ := s.PieceAt(dest); occ != nil && occ.ID != pieceID {
			captured = s.removeAt(dest)
		}
	}
	p.Position = dest
	p.FirstMove = false
	return captured
}

// applyHypothesis applies a candidate move and its scheduled removals.
// It is used on snapshots only.
func (s *State) applyHypothesis(pieceID int, dest board.Position, removeOccupant bool, pending []Action) {
	for _, a := range pending {
		if a.Kind == ActionRemove {
			s.removeAt(a.Target)
		}
	}
	s.ApplyMove(pieceID, dest, removeOccupant)
}

// mustValidate panics if a piece is off the board, two pieces share a
// cell or two pieces share an id.
func (s *State) mustValidate() {
	if err := s.validate(); err != nil {
		panic("game: " + err.Error())
	}
}

func (s *State) validate() error {
	ids := make(map[int]bool)
	cells := make(map[board.Position]int)
	for _, pl := range s.Players {
		for _, p := range pl.Pieces {
			if ids[p.ID] {
				return fmt.Errorf("duplicate piece id %d", p.ID)
			}
			ids[p.ID] = true
			if !s.Board.Contains(p.Position) {
				return fmt.Errorf("piece %d off the board at %s", p.ID, p.Position)
			}
			if other, ok := cells[p.Position]; ok {
				return fmt.Errorf("pieces %d and %d share cell %s", other, p.ID, p.Position)
			}
			cells[p.Position] = p.ID
			if p.Owner != pl {
				return fmt.Errorf("piece %d has the wrong owner", p.ID)
			}
		}
	}
	if len(s.Players) > 0 && (s.Turn < 0 || s.Turn >= len(s.Players)) {
		return fmt.Errorf("turn index %d out of range", s.Turn)
	}
	return nil
}

// NextPieceID returns an id not used by any piece.
func (s *State) NextPieceID() int {
	next := 0
	for _, pl := range s.Players {
		for _, p := range pl.Pieces {
			if p.ID >= next {
				next = p.ID + 1
			}
		}
	}
	return next
}

// String returns a text board: uppercase letters for the first player,
// lowercase for others, '#' for absent cells.
func (s *State) String() string {
	var sb strings.Builder
	sb.WriteString("\n    ")
	for c := 0; c < s.Board.Columns; c++ {
		fmt.Fprintf(&sb, "%-2d", c%100)
	}
	sb.WriteString("\n")
	for r := 0; r < s.Board.Rows; r++ {
		fmt.Fprintf(&sb, "%2d  ", r)
		for c := 0; c < s.Board.Columns; c++ {
			pos := board.NewPosition(r, c)
			switch {
			case !s.Board.Contains(pos):
				sb.WriteString("# ")
			case s.PieceAt(pos) != nil:
				p := s.PieceAt(pos)
				sb.WriteByte(p.Char())
				if p.Owner.ID > 1 {
					sb.WriteByte('0' + byte(p.Owner.ID%10))
				} else {
					sb.WriteByte(' ')
				}
			default:
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nTo move: %s\n", s.Current())
	fmt.Fprintf(&sb, "Round: %d\n", s.Round)
	return sb.String()
}
