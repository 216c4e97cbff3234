package game

import (
	"github.com/hailam/chessrules/internal/board"
)

// Verdict is the outcome of evaluating a candidate move.
type Verdict struct {
	Legal bool

	// Shape is false when the displacement is never a move of the piece.
	Shape bool

	// Failed names the first unmet condition.
	Failed string

	// Actions are the deferred side effects to apply. For an illegal move
	// only the actions marked EvenIfUnmet are kept.
	Actions []Action
}

// Evaluate decides whether p may move to dest. Conditions run in chain
// order and stop at the first unmet one. It never mutates s.
func (s *State) Evaluate(p *Piece, dest board.Position, mode Mode) Verdict {
	if p == nil || p.Owner == nil || !s.Board.Contains(dest) {
		return Verdict{}
	}
	t := p.TranslationTo(dest)
	ok, chain := p.LegalShape(t)
	if !ok {
		return Verdict{}
	}

	ctx := &EvalContext{State: s, Piece: p, Dest: dest, Mode: mode}
	for _, clause := range chain {
		out := clause.Condition.Evaluate(ctx, clause.Translations)
		ctx.Pending = append(ctx.Pending, out.Actions...)
		if !out.Met {
			return Verdict{
				Shape:   true,
				Failed:  clause.Condition.Name(),
				Actions: firingAnyway(ctx.Pending),
			}
		}
	}
	return Verdict{Legal: true, Shape: true, Actions: ctx.Pending}
}

// firingAnyway keeps the actions that apply even though the chain failed.
func firingAnyway(actions []Action) []Action {
	var out []Action
	for _, a := range actions {
		if a.EvenIfUnmet {
			out = append(out, a)
		}
	}
	return out
}

// Attacks reports whether p reaches dest, ignoring its own king's safety.
func (s *State) Attacks(p *Piece, dest board.Position) bool {
	if !p.CanPossiblyMove(p.TranslationTo(dest)) {
		return false
	}
	return s.Evaluate(p, dest, AttackQuery).Legal
}

// LegalMoves returns every cell p may legally move to, in index order.
func (s *State) LegalMoves(p *Piece) []board.Position {
	var out []board.Position
	for _, dest := range s.Board.Cells() {
		if !p.CanPossiblyMove(p.TranslationTo(dest)) {
			continue
		}
		if s.Evaluate(p, dest, Validation).Legal {
			out = append(out, dest)
		}
	}
	return out
}
