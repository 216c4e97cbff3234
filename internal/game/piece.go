// Package game implements the rule core of a multi-variant chess engine:
// pieces and their move capabilities, composable legality conditions,
// speculative snapshots, check analysis and the turn executor.
package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// Kind is the type of a piece.
type Kind uint8

const (
	King Kind = iota
	Queen
	Rook
	Bishop
	Knight
	Pawn
	Ship
	NoKind
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case King:
		return "King"
	case Queen:
		return "Queen"
	case Rook:
		return "Rook"
	case Bishop:
		return "Bishop"
	case Knight:
		return "Knight"
	case Pawn:
		return "Pawn"
	case Ship:
		return "Ship"
	default:
		return "None"
	}
}

// Char returns the single letter used for the kind in text boards.
func (k Kind) Char() byte {
	chars := []byte{'k', 'q', 'r', 'b', 'n', 'p', 's', ' '}
	if k > NoKind {
		return ' '
	}
	return chars[k]
}

// ParseKind parses a kind name or letter.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "King", "king", "k":
		return King, nil
	case "Queen", "queen", "q":
		return Queen, nil
	case "Rook", "rook", "r":
		return Rook, nil
	case "Bishop", "bishop", "b":
		return Bishop, nil
	case "Knight", "knight", "n":
		return Knight, nil
	case "Pawn", "pawn", "p":
		return Pawn, nil
	case "Ship", "ship", "s":
		return Ship, nil
	}
	return NoKind, fmt.Errorf("invalid piece kind: %s", s)
}

// PromotionKinds is the closed set a pawn may promote to.
var PromotionKinds = []Kind{Queen, Rook, Bishop, Knight}

// IsPromotionKind returns true if a pawn may promote to k.
func IsPromotionKind(k Kind) bool {
	for _, pk := range PromotionKinds {
		if pk == k {
			return true
		}
	}
	return false
}

// NeverAdvanced marks a pawn that has not made a two-cell advance.
const NeverAdvanced = -1

// Piece is a single piece on the board.
type Piece struct {
	ID       int
	Kind     Kind
	Position board.Position
	Start    board.Position

	// Owner is a back-reference; the player owns the piece, not the reverse.
	Owner *Player

	FirstMove bool
	Selected  bool

	// RemoveOccupant is false for pawns, whose captures are scheduled by conditions.
	RemoveOccupant bool

	// AdvancedTwoRound is the round of the pawn's two-cell advance.
	AdvancedTwoRound int
}

// NewPiece creates an unmoved piece of the given kind at pos.
func NewPiece(id int, kind Kind, pos board.Position) *Piece {
	return &Piece{
		ID:               id,
		Kind:             kind,
		Position:         pos,
		Start:            pos,
		FirstMove:        true,
		RemoveOccupant:   kind != Pawn,
		AdvancedTwoRound: NeverAdvanced,
	}
}

// Name returns the display name of the piece.
func (p *Piece) Name() string {
	if p.Owner == nil {
		return p.Kind.String()
	}
	return p.Owner.Name + " " + p.Kind.String()
}

// String returns a short description including id and position.
func (p *Piece) String() string {
	return fmt.Sprintf("%s#%d@%s", p.Name(), p.ID, p.Position)
}

// Char returns the text board letter, uppercase for the first player.
func (p *Piece) Char() byte {
	c := p.Kind.Char()
	if p.Owner != nil && p.Owner.ID == 0 {
		c -= 'a' - 'A'
	}
	return c
}

// TranslationTo returns the owner-relative displacement to dest.
func (p *Piece) TranslationTo(dest board.Position) board.Translation {
	return p.Owner.Direction.Between(p.Position, dest)
}

// Resolve returns the cell reached by t from the piece's position.
func (p *Piece) Resolve(t board.Translation) board.Position {
	return p.Owner.Direction.Resolve(p.Position, t)
}

// CanPossiblyMove reports whether t could ever be a move of this piece,
// ignoring the board.
func (p *Piece) CanPossiblyMove(t board.Translation) bool {
	if t.IsZero() {
		return false
	}
	return rulesFor(p.Kind).possible(t)
}

// LegalShape reports whether t is a legal shape for this piece and returns the
// ordered conditions that must also hold on the board.
func (p *Piece) LegalShape(t board.Translation) (bool, []Clause) {
	if !p.CanPossiblyMove(t) {
		return false, nil
	}
	return rulesFor(p.Kind).legal(p, t)
}

// copyPiece returns a copy without an owner.
func (p *Piece) copyPiece() *Piece {
	c := *p
	c.Owner = nil
	return &c
}

// Player is a participant and the ordered list of pieces it owns.
type Player struct {
	ID         int
	Name       string
	Direction  board.Direction
	Pieces     []*Piece
	Eliminated bool
}

// NewPlayer creates a player with no pieces.
func NewPlayer(id int, name string, dir board.Direction) *Player {
	return &Player{ID: id, Name: name, Direction: dir}
}

// AddPiece gives p to the player.
func (pl *Player) AddPiece(p *Piece) *Piece {
	p.Owner = pl
	pl.Pieces = append(pl.Pieces, p)
	return p
}

// RemovePiece removes the piece with the given id from the player.
func (pl *Player) RemovePiece(id int) *Piece {
	for i, p := range pl.Pieces {
		if p.ID == id {
			pl.Pieces = append(pl.Pieces[:i], pl.Pieces[i+1:]...)
			return p
		}
	}
	return nil
}

// replacePiece swaps the piece with np's id for np, keeping list order.
func (pl *Player) replacePiece(np *Piece) {
	for i, p := range pl.Pieces {
		if p.ID == np.ID {
			np.Owner = pl
			pl.Pieces[i] = np
			return
		}
	}
}

// King returns the player's king, or nil if it has none.
func (pl *Player) King() *Piece {
	for _, p := range pl.Pieces {
		if p.Kind == King {
			return p
		}
	}
	return nil
}

// PiecesOfKind returns the player's pieces of kind k.
func (pl *Player) PiecesOfKind(k Kind) []*Piece {
	var out []*Piece
	for _, p := range pl.Pieces {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

// String returns the player name.
func (pl *Player) String() string {
	return pl.Name
}
