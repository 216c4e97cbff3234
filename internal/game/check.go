package game

import (
	"context"
	"sync/atomic"

	"github.com/hailam/chessrules/internal/board"
	"golang.org/x/sync/errgroup"
)

// IsCheck returns true if any opposing piece attacks pl's king.
// Attacks are evaluated as attack queries, so king safety of the attacker
// is never consulted and the evaluation cannot recurse.
func (s *State) IsCheck(pl *Player) bool {
	return len(s.Checkers(pl)) > 0
}

// Checkers returns every opposing piece attacking pl's king.
func (s *State) Checkers(pl *Player) []*Piece {
	if pl == nil {
		return nil
	}
	king := pl.King()
	if king == nil {
		return nil
	}
	var out []*Piece
	for _, opp := range s.Opponents(pl) {
		for _, p := range opp.Pieces {
			if s.Attacks(p, king.Position) {
				out = append(out, p)
			}
		}
	}
	return out
}

// IsAttacked returns true if any opponent of pl reaches pos.
func (s *State) IsAttacked(pos board.Position, pl *Player) bool {
	for _, opp := range s.Opponents(pl) {
		for _, p := range opp.Pieces {
			if s.Attacks(p, pos) {
				return true
			}
		}
	}
	return false
}

// Escape is a legal move found by the escape search.
type Escape struct {
	PieceID int
	Dest    board.Position
}

// FindEscape searches every (piece, cell) pair for a legal move of pl.
// It returns the first found and false if there is none.
func (s *State) FindEscape(pl *Player) (Escape, bool) {
	for _, p := range pl.Pieces {
		for _, dest := range s.Board.Cells() {
			if !p.CanPossiblyMove(p.TranslationTo(dest)) {
				continue
			}
			if s.Evaluate(p, dest, Validation).Legal {
				return Escape{PieceID: p.ID, Dest: dest}, true
			}
		}
	}
	return Escape{}, false
}

// FindEscapeParallel runs the escape search with one task per piece.
// Evaluation only reads s and builds private snapshots, so the tasks share
// no mutable state. The search stops once any task finds a move.
func (s *State) FindEscapeParallel(ctx context.Context, pl *Player, workers int) (Escape, bool, error) {
	if workers <= 1 {
		e, ok := s.FindEscape(pl)
		return e, ok, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var found atomic.Pointer[Escape]
	cells := s.Board.Cells()
	for _, p := range pl.Pieces {
		p := p
		g.Go(func() error {
			for _, dest := range cells {
				if found.Load() != nil {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if !p.CanPossiblyMove(p.TranslationTo(dest)) {
					continue
				}
				if s.Evaluate(p, dest, Validation).Legal {
					found.CompareAndSwap(nil, &Escape{PieceID: p.ID, Dest: dest})
					return nil
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Escape{}, false, err
	}
	if e := found.Load(); e != nil {
		return *e, true, nil
	}
	return Escape{}, false, nil
}

// HasLegalMoves returns true if pl has any legal move.
func (s *State) HasLegalMoves(pl *Player) bool {
	_, ok := s.FindEscape(pl)
	return ok
}

// IsCheckmate returns true if pl is in check and no move escapes it.
func (s *State) IsCheckmate(pl *Player) bool {
	return s.IsCheck(pl) && !s.HasLegalMoves(pl)
}

// IsStalemate returns true if pl is not in check but has no legal move.
func (s *State) IsStalemate(pl *Player) bool {
	return !s.IsCheck(pl) && !s.HasLegalMoves(pl)
}
