package game

import (
	"github.com/hailam/chessrules/internal/board"
)

// Mode selects how a move is evaluated.
type Mode uint8

const (
	// Validation evaluates a candidate move in full, including whether it
	// leaves the mover's king attacked.
	Validation Mode = iota

	// AttackQuery asks only whether a piece reaches a cell. King safety is
	// not evaluated and castling never attacks, so the query terminates.
	AttackQuery
)

// String returns the mode name.
func (m Mode) String() string {
	if m == AttackQuery {
		return "attack"
	}
	return "validation"
}

// Condition is a stateless legality rule attached to a move shape.
type Condition interface {
	Name() string
	Evaluate(ctx *EvalContext, ts []board.Translation) Outcome
}

// Clause applies a condition to the translations it checks.
type Clause struct {
	Condition    Condition
	Translations []board.Translation
}

// When builds a clause.
func When(c Condition, ts ...board.Translation) Clause {
	return Clause{Condition: c, Translations: ts}
}

// Outcome is the result of evaluating a condition.
type Outcome struct {
	Met     bool
	Actions []Action
}

// met returns a satisfied outcome carrying actions.
func met(actions ...Action) Outcome {
	return Outcome{Met: true, Actions: actions}
}

// unmet returns a failed outcome carrying actions.
func unmet(actions ...Action) Outcome {
	return Outcome{Actions: actions}
}

// EvalContext is the read-only input of a condition.
type EvalContext struct {
	State *State
	Piece *Piece
	Dest  board.Position
	Mode  Mode

	// Pending holds the actions scheduled by earlier clauses of the chain.
	Pending []Action
}

// resolve maps translations to cells from the moving piece.
func (ctx *EvalContext) resolve(ts []board.Translation) []board.Position {
	out := make([]board.Position, len(ts))
	for i, t := range ts {
		out[i] = ctx.Piece.Resolve(t)
	}
	return out
}

// ActionKind identifies a deferred side effect.
type ActionKind uint8

const (
	// ActionRemove removes the piece on Target before the mover lands.
	ActionRemove ActionKind = iota
	// ActionRelocate moves PieceID to Target after the mover lands.
	ActionRelocate
	// ActionChooseRook asks the chooser which of Options to castle with.
	ActionChooseRook
	// ActionMarkAdvancedTwo stamps PieceID with the current round.
	ActionMarkAdvancedTwo
	// ActionCheckPromotion promotes PieceID if it reached the far edge.
	ActionCheckPromotion
	// ActionNotify reports Message to the presentation layer.
	ActionNotify
)

// String returns the action kind name.
func (k ActionKind) String() string {
	switch k {
	case ActionRemove:
		return "remove"
	case ActionRelocate:
		return "relocate"
	case ActionChooseRook:
		return "choose-rook"
	case ActionMarkAdvancedTwo:
		return "mark-advanced-two"
	case ActionCheckPromotion:
		return "check-promotion"
	case ActionNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// RookOption is one rook that may take part in a castle.
type RookOption struct {
	RookID int
	From   board.Position
	To     board.Position
}

// Action is a side effect scheduled during evaluation and applied only
// after the move is committed. Actions address pieces by id so the same
// action applies to the live state or to a snapshot.
type Action struct {
	Kind    ActionKind
	PieceID int
	Target  board.Position
	Options []RookOption
	Message string

	// EvenIfUnmet fires the action although the chain failed.
	EvenIfUnmet bool
}

// Notify returns a message action that fires even if the move fails.
func Notify(msg string) Action {
	return Action{Kind: ActionNotify, Message: msg, EvenIfUnmet: true}
}
