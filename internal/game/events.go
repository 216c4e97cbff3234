package game

import (
	"github.com/hailam/chessrules/internal/board"
)

// EventKind identifies what an Event reports.
type EventKind uint8

const (
	EventMoved EventKind = iota
	EventRemoved
	EventReplaced
	EventCellsRemoved
	EventStatus
	EventChoice
	EventEliminated
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventMoved:
		return "moved"
	case EventRemoved:
		return "removed"
	case EventReplaced:
		return "replaced"
	case EventCellsRemoved:
		return "cells-removed"
	case EventStatus:
		return "status"
	case EventChoice:
		return "choice"
	case EventEliminated:
		return "eliminated"
	default:
		return "unknown"
	}
}

// Event tells the view layer what changed after a committed move.
type Event struct {
	Kind     EventKind
	PieceID  int
	PlayerID int
	From     board.Position
	To       board.Position
	NewKind  Kind
	Cells    []int
	Message  string
}

// Observer receives events from a game.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(Event)

// Notify calls f.
func (f ObserverFunc) Notify(e Event) { f(e) }

// Chooser answers the questions a move can raise. Returning ok=false
// defers the answer: the game waits in AwaitingChoice until the caller
// resolves it with Game.ChooseRook or Game.Promote.
type Chooser interface {
	ChooseRook(s *State, options []RookOption) (rookID int, ok bool)
	ChoosePromotion(s *State, pawn *Piece) (kind Kind, ok bool)
}

// DeferChooser defers every question.
type DeferChooser struct{}

// ChooseRook defers the rook choice.
func (DeferChooser) ChooseRook(*State, []RookOption) (int, bool) { return 0, false }

// ChoosePromotion defers the promotion choice.
func (DeferChooser) ChoosePromotion(*State, *Piece) (Kind, bool) { return NoKind, false }

// ChoiceKind identifies a pending question.
type ChoiceKind uint8

const (
	ChooseRookChoice ChoiceKind = iota
	ChoosePromotionChoice
)

// String returns the choice kind name.
func (k ChoiceKind) String() string {
	switch k {
	case ChooseRookChoice:
		return "rook"
	case ChoosePromotionChoice:
		return "promotion"
	default:
		return "unknown"
	}
}

// Choice is a question waiting for the presentation layer.
type Choice struct {
	Kind    ChoiceKind
	PieceID int
	Options []RookOption
}
