package game

import (
	"github.com/hailam/chessrules/internal/board"
)

// Vacant requires every cell to exist and be unoccupied.
type Vacant struct{}

// Name returns "Vacant".
func (Vacant) Name() string { return "Vacant" }

// Evaluate reports whether every resolved cell is empty.
func (Vacant) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	for _, pos := range ctx.resolve(ts) {
		if !ctx.State.IsVacant(pos) {
			return unmet()
		}
	}
	return met()
}

// Occupied requires every cell to hold a piece.
type Occupied struct{}

// Name returns "Occupied".
func (Occupied) Name() string { return "Occupied" }

// Evaluate reports whether every resolved cell holds a piece.
func (Occupied) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	for _, pos := range ctx.resolve(ts) {
		if ctx.State.PieceAt(pos) == nil {
			return unmet()
		}
	}
	return met()
}

// OccupiedByOpponent requires every cell to hold a piece of another player.
type OccupiedByOpponent struct{}

// Name returns "OccupiedByOpponent".
func (OccupiedByOpponent) Name() string { return "OccupiedByOpponent" }

// Evaluate reports whether every resolved cell holds an opposing piece.
func (OccupiedByOpponent) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	for _, pos := range ctx.resolve(ts) {
		if !isOpponentAt(ctx, pos) {
			return unmet()
		}
	}
	return met()
}

// NotOccupiedBySelf requires that no cell holds a piece of the mover.
type NotOccupiedBySelf struct{}

// Name returns "NotOccupiedBySelf".
func (NotOccupiedBySelf) Name() string { return "NotOccupiedBySelf" }

// Evaluate reports whether no resolved cell holds a piece of the mover.
func (NotOccupiedBySelf) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	for _, pos := range ctx.resolve(ts) {
		if occ := ctx.State.PieceAt(pos); occ != nil && occ.Owner.ID == ctx.Piece.Owner.ID {
			return unmet()
		}
	}
	return met()
}

// IsFirstMove requires the moving piece not to have moved yet.
type IsFirstMove struct{}

// Name returns "IsFirstMove".
func (IsFirstMove) Name() string { return "IsFirstMove" }

// Evaluate reports whether the piece has not moved yet.
func (IsFirstMove) Evaluate(ctx *EvalContext, _ []board.Translation) Outcome {
	if !ctx.Piece.FirstMove {
		return unmet()
	}
	return met()
}

// CannotRemainInCheck applies the move to a snapshot and requires that the
// mover's king is not attacked afterwards. It is skipped by attack queries.
type CannotRemainInCheck struct{}

// Name returns "CannotRemainInCheck".
func (CannotRemainInCheck) Name() string { return "CannotRemainInCheck" }

// Evaluate replays the move on a snapshot and checks the mover's king.
func (CannotRemainInCheck) Evaluate(ctx *EvalContext, _ []board.Translation) Outcome {
	if ctx.Mode == AttackQuery {
		return met()
	}
	snap := ctx.State.Snapshot()
	snap.applyHypothesis(ctx.Piece.ID, ctx.Dest, ctx.Piece.RemoveOccupant, ctx.Pending)
	if snap.IsCheck(snap.Player(ctx.Piece.Owner.ID)) {
		return unmet()
	}
	return met()
}

// RookCastleEligible looks for unmoved rooks on the king's rank whose path
// to the king's transit cell is clear. The king's own cell counts as clear
// since the king leaves it. One rook is relocated directly; several are
// handed to the chooser.
type RookCastleEligible struct{}

// Name returns "RookCastleEligible".
func (RookCastleEligible) Name() string { return "RookCastleEligible" }

// Evaluate collects the eligible rooks and schedules the rook move.
func (RookCastleEligible) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	king := ctx.Piece
	if len(ts) == 0 || ts[0].Right == 0 {
		return unmet()
	}
	transit := king.Resolve(board.NewTranslation(0, sign(ts[0].Right)))

	var options []RookOption
	for _, rook := range king.Owner.PiecesOfKind(Rook) {
		if !rook.FirstMove || king.TranslationTo(rook.Position).Forward != 0 {
			continue
		}
		if rookPathClear(ctx.State, king, rook.Position, transit) {
			options = append(options, RookOption{RookID: rook.ID, From: rook.Position, To: transit})
		}
	}

	switch len(options) {
	case 0:
		return unmet(Notify("Cannot castle: no eligible rook"))
	case 1:
		return met(Action{Kind: ActionRelocate, PieceID: options[0].RookID, Target: transit})
	default:
		return met(Action{Kind: ActionChooseRook, PieceID: king.ID, Target: transit, Options: options})
	}
}

// rookPathClear checks the cells after from up to and including to,
// ignoring the king's own cell.
func rookPathClear(s *State, king *Piece, from, to board.Position) bool {
	dir := king.Owner.Direction
	t := dir.Between(from, to)
	if t.IsZero() {
		return false
	}
	for _, step := range append(t.Path(), t) {
		cell := dir.Resolve(from, step)
		if cell == king.Position {
			continue
		}
		if !s.IsVacant(cell) {
			return false
		}
	}
	return true
}

// NotAttacked requires that the king would not be in check on any of the
// cells. The zero translation checks the king where it stands.
// Castling never captures, so an attack query fails it.
type NotAttacked struct{}

// Name returns "NotAttacked".
func (NotAttacked) Name() string { return "NotAttacked" }

// Evaluate checks each cell with the king placed on it.
func (NotAttacked) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	if ctx.Mode == AttackQuery {
		return unmet()
	}
	owner := ctx.Piece.Owner
	for _, t := range ts {
		if t.IsZero() {
			if ctx.State.IsAttacked(ctx.Piece.Position, owner) {
				return unmet(Notify("Cannot castle out of check"))
			}
			continue
		}
		snap := ctx.State.Snapshot()
		snap.ApplyMove(ctx.Piece.ID, ctx.Piece.Resolve(t), false)
		if snap.IsCheck(snap.Player(owner.ID)) {
			return unmet(Notify("Cannot castle through an attacked cell"))
		}
	}
	return met()
}

// EnPassantOrOccupied takes a landing and a beside translation. It is met
// when the beside cell holds an opposing pawn that may be taken en passant
// and the landing cell is vacant, scheduling that pawn's removal. Otherwise
// the landing cell must hold an opponent, which is scheduled for removal.
type EnPassantOrOccupied struct{}

// Name returns "EnPassantOrOccupied".
func (EnPassantOrOccupied) Name() string { return "EnPassantOrOccupied" }

// Evaluate schedules the removal of the captured piece.
func (EnPassantOrOccupied) Evaluate(ctx *EvalContext, ts []board.Translation) Outcome {
	if len(ts) < 2 {
		return unmet()
	}
	landing, beside := ctx.Piece.Resolve(ts[0]), ctx.Piece.Resolve(ts[1])

	if victim := ctx.State.PieceAt(beside); victim != nil && ctx.State.IsVacant(landing) &&
		ctx.State.EnPassantOpen(victim, ctx.Piece.Owner) {
		return met(Action{Kind: ActionRemove, PieceID: victim.ID, Target: beside})
	}
	if isOpponentAt(ctx, landing) {
		occ := ctx.State.PieceAt(landing)
		return met(Action{Kind: ActionRemove, PieceID: occ.ID, Target: landing})
	}
	return unmet()
}

// MarkAdvancedTwo schedules stamping the pawn with the current round.
type MarkAdvancedTwo struct{}

// Name returns "MarkAdvancedTwo".
func (MarkAdvancedTwo) Name() string { return "MarkAdvancedTwo" }

// Evaluate always holds and schedules the round stamp.
func (MarkAdvancedTwo) Evaluate(ctx *EvalContext, _ []board.Translation) Outcome {
	return met(Action{Kind: ActionMarkAdvancedTwo, PieceID: ctx.Piece.ID})
}

// CheckForPromotion schedules a promotion check after the move lands.
type CheckForPromotion struct{}

// Name returns "CheckForPromotion".
func (CheckForPromotion) Name() string { return "CheckForPromotion" }

// Evaluate always holds and schedules the promotion check.
func (CheckForPromotion) Evaluate(ctx *EvalContext, _ []board.Translation) Outcome {
	return met(Action{Kind: ActionCheckPromotion, PieceID: ctx.Piece.ID})
}

func isOpponentAt(ctx *EvalContext, pos board.Position) bool {
	occ := ctx.State.PieceAt(pos)
	return occ != nil && occ.Owner.ID != ctx.Piece.Owner.ID
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
