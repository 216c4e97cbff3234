package game

import (
	"github.com/hailam/chessrules/internal/board"
)

// moveRules is the move capability of one piece kind.
// possible is a cheap board-independent shape test used to prune searches;
// legal returns whether the shape is a move of the kind and the ordered
// conditions the board must satisfy.
type moveRules struct {
	possible func(t board.Translation) bool
	legal    func(p *Piece, t board.Translation) (bool, []Clause)
}

// rulesFor returns the move rules of a kind.
func rulesFor(k Kind) moveRules {
	switch k {
	case King:
		return moveRules{possible: kingShape, legal: kingMove}
	case Queen:
		return moveRules{possible: queenShape, legal: slidingMove}
	case Rook:
		return moveRules{possible: board.Translation.IsStraight, legal: slidingMove}
	case Bishop:
		return moveRules{possible: board.Translation.IsDiagonal, legal: slidingMove}
	case Knight:
		return moveRules{possible: knightShape, legal: knightMove}
	case Pawn:
		return moveRules{possible: pawnShape, legal: pawnMove}
	case Ship:
		return moveRules{possible: shipShape, legal: shipMove}
	}
	return moveRules{
		possible: func(board.Translation) bool { return false },
		legal:    func(*Piece, board.Translation) (bool, []Clause) { return false, nil },
	}
}

// Castling moves the king two cells sideways.
const castleSpan = 2

// Ships sail at most this many cells.
const shipRange = 3

func kingShape(t board.Translation) bool {
	if isCastle(t) {
		return true
	}
	return !t.IsZero() && t.Span() == 1
}

func isCastle(t board.Translation) bool {
	return t.Forward == 0 && (t.Right == castleSpan || t.Right == -castleSpan)
}

func queenShape(t board.Translation) bool {
	return t.IsStraight() || t.IsDiagonal()
}

func knightShape(t board.Translation) bool {
	f, r := t.Forward, t.Right
	return f*f+r*r == 5
}

func pawnShape(t board.Translation) bool {
	switch {
	case t.Forward == 2 && t.Right == 0:
		return true
	case t.Forward == 1 && t.Right >= -1 && t.Right <= 1:
		return true
	}
	return false
}

func shipShape(t board.Translation) bool {
	return t.IsStraight() && t.Span() <= shipRange
}

func kingMove(p *Piece, t board.Translation) (bool, []Clause) {
	if !isCastle(t) {
		return true, []Clause{
			When(NotOccupiedBySelf{}, t),
			When(CannotRemainInCheck{}),
		}
	}
	transit := board.NewTranslation(0, t.Right/castleSpan)
	return true, []Clause{
		When(IsFirstMove{}),
		When(RookCastleEligible{}, t),
		When(Vacant{}, transit, t),
		When(NotAttacked{}, board.Translation{}, transit, t),
		When(CannotRemainInCheck{}),
	}
}

func slidingMove(p *Piece, t board.Translation) (bool, []Clause) {
	var chain []Clause
	if path := t.Path(); len(path) > 0 {
		chain = append(chain, When(Vacant{}, path...))
	}
	return true, append(chain,
		When(NotOccupiedBySelf{}, t),
		When(CannotRemainInCheck{}),
	)
}

func knightMove(p *Piece, t board.Translation) (bool, []Clause) {
	return true, []Clause{
		When(NotOccupiedBySelf{}, t),
		When(CannotRemainInCheck{}),
	}
}

func pawnMove(p *Piece, t board.Translation) (bool, []Clause) {
	switch {
	case t.Forward == 2:
		return true, []Clause{
			When(IsFirstMove{}),
			When(Vacant{}, board.NewTranslation(1, 0), t),
			When(MarkAdvancedTwo{}),
			When(CheckForPromotion{}),
			When(CannotRemainInCheck{}),
		}
	case t.Right == 0:
		return true, []Clause{
			When(Vacant{}, t),
			When(CheckForPromotion{}),
			When(CannotRemainInCheck{}),
		}
	default:
		beside := board.NewTranslation(0, t.Right)
		return true, []Clause{
			When(EnPassantOrOccupied{}, t, beside),
			When(CheckForPromotion{}),
			When(CannotRemainInCheck{}),
		}
	}
}

func shipMove(p *Piece, t board.Translation) (bool, []Clause) {
	return true, []Clause{
		When(Vacant{}, append(t.Path(), t)...),
		When(CannotRemainInCheck{}),
	}
}
