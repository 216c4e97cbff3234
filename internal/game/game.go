package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hailam/chessrules/internal/board"
)

// Phase is the step of the turn state machine.
type Phase uint8

const (
	AwaitingSelection Phase = iota
	AwaitingDestination
	AwaitingChoice
	Finished
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case AwaitingSelection:
		return "awaiting-selection"
	case AwaitingDestination:
		return "awaiting-destination"
	case AwaitingChoice:
		return "awaiting-choice"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Result describes what one call into the game did.
type Result struct {
	// Legal is true when a move was committed.
	Legal bool

	// Failed names the condition that rejected the move.
	Failed string

	Captured []int
	Promoted bool
	Messages []string

	// Pending is set while the game waits for a choice.
	Pending *Choice

	// Status is the check/checkmate/stalemate line after the move.
	Status string
}

// Game applies moves to a live State and runs the turn state machine.
type Game struct {
	State   *State
	Variant Variant

	chooser  Chooser
	observer Observer
	log      zerolog.Logger

	workers     int
	shrinkEvery int

	phase  Phase
	queue  []Action
	choice *Choice
	status string
	winner *Player
}

// Option configures a Game.
type Option func(*Game)

// WithChooser sets who answers castling and promotion questions.
func WithChooser(c Chooser) Option {
	return func(g *Game) { g.chooser = c }
}

// WithObserver sets the receiver of move events.
func WithObserver(o Observer) Option {
	return func(g *Game) { g.observer = o }
}

// WithLogger sets the game logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Game) { g.log = l }
}

// WithWorkers sets the parallelism of the checkmate escape search.
func WithWorkers(n int) Option {
	return func(g *Game) { g.workers = n }
}

// WithShrinkEvery sets the rounds between two shrinks of a Shrinking board.
func WithShrinkEvery(n int) Option {
	return func(g *Game) { g.shrinkEvery = n }
}

// NewGame starts a game of the given variant.
func NewGame(v Variant, opts ...Option) *Game {
	return Resume(v, v.Setup(), opts...)
}

// Resume continues a game from an existing state.
func Resume(v Variant, s *State, opts ...Option) *Game {
	g := &Game{
		State:       s,
		Variant:     v,
		chooser:     DeferChooser{},
		log:         zerolog.Nop(),
		workers:     1,
		shrinkEvery: DefaultShrinkEvery,
	}
	for _, opt := range opts {
		opt(g)
	}
	if s.Selected != nil {
		g.phase = AwaitingDestination
	}
	return g
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Pending returns the question the game waits on, or nil.
func (g *Game) Pending() *Choice { return g.choice }

// Status returns the last status line.
func (g *Game) Status() string { return g.status }

// Winner returns the winning player once the game is finished, or nil
// for a draw or a game in progress.
func (g *Game) Winner() *Player { return g.winner }

// Tap handles a cell tap: a tap on an own piece selects it, any other tap
// with a piece selected attempts the move.
func (g *Game) Tap(pos board.Position) (Result, error) {
	if err := g.ready(); err != nil {
		return Result{}, err
	}
	if p := g.State.PieceAt(pos); p != nil && p.Owner.ID == g.State.Current().ID {
		return Result{}, g.Select(pos)
	}
	if g.phase != AwaitingDestination {
		return Result{}, ErrNotYourPiece
	}
	return g.MoveSelected(pos)
}

// Select picks the piece of the player to move on pos.
func (g *Game) Select(pos board.Position) error {
	if err := g.ready(); err != nil {
		return err
	}
	p := g.State.PieceAt(pos)
	if p == nil || p.Owner.ID != g.State.Current().ID {
		return ErrNotYourPiece
	}
	g.clearSelection()
	p.Selected = true
	g.State.Selected = p
	g.phase = AwaitingDestination
	return nil
}

// Move selects the piece on from and moves it to to.
func (g *Game) Move(from, to board.Position) (Result, error) {
	if err := g.Select(from); err != nil {
		return Result{}, err
	}
	return g.MoveSelected(to)
}

// MoveSelected attempts to move the selected piece to dest. An illegal
// move is not an error: it clears the selection and reports Legal=false.
func (g *Game) MoveSelected(dest board.Position) (Result, error) {
	if err := g.ready(); err != nil {
		return Result{}, err
	}
	p := g.State.Selected
	if p == nil {
		return Result{}, ErrNoSelection
	}
	g.clearSelection()

	v := g.State.Evaluate(p, dest, Validation)
	if !v.Legal {
		res := Result{Failed: v.Failed}
		for _, a := range v.Actions {
			if a.Kind == ActionNotify {
				res.Messages = append(res.Messages, a.Message)
				g.emit(Event{Kind: EventStatus, Message: a.Message})
			}
		}
		g.log.Debug().
			Str("piece", p.String()).
			Str("dest", dest.String()).
			Str("failed", v.Failed).
			Msg("move rejected")
		return res, nil
	}

	res := Result{Legal: true}
	from := p.Position
	var post []Action
	var victims []*Piece
	for _, a := range v.Actions {
		if a.Kind == ActionRemove {
			if victim := g.State.removeAt(a.Target); victim != nil {
				victims = append(victims, victim)
				g.emit(Event{Kind: EventRemoved, PieceID: victim.ID, PlayerID: victim.Owner.ID, From: a.Target})
			}
			continue
		}
		post = append(post, a)
	}
	if victim := g.State.ApplyMove(p.ID, dest, p.RemoveOccupant); victim != nil {
		victims = append(victims, victim)
		g.emit(Event{Kind: EventRemoved, PieceID: victim.ID, PlayerID: victim.Owner.ID, From: dest})
	}
	for _, victim := range victims {
		res.Captured = append(res.Captured, victim.ID)
	}
	g.emit(Event{Kind: EventMoved, PieceID: p.ID, PlayerID: p.Owner.ID, From: from, To: dest})
	g.log.Info().
		Str("piece", p.Name()).
		Int("id", p.ID).
		Str("from", from.String()).
		Str("to", dest.String()).
		Ints("captured", res.Captured).
		Msg("move committed")

	// With more than two players a king can be left en prise to a third
	// player. Losing it takes its owner out of the game.
	for _, victim := range victims {
		owner := victim.Owner
		if victim.Kind != King || owner.Eliminated || owner.King() != nil {
			continue
		}
		g.eliminate(owner)
		msg := fmt.Sprintf("King captured: %s is out", owner.Name)
		res.Messages = append(res.Messages, msg)
		g.emit(Event{Kind: EventStatus, Message: msg})
	}

	g.queue = post
	g.run(&res)
	return res, nil
}

// ChooseRook answers a pending castling question.
func (g *Game) ChooseRook(rookID int) (Result, error) {
	if g.choice == nil || g.choice.Kind != ChooseRookChoice {
		return Result{}, ErrNoChoicePending
	}
	opt, ok := findOption(g.choice.Options, rookID)
	if !ok {
		return Result{}, fmt.Errorf("%w: rook %d is not eligible", ErrInvalidChoice, rookID)
	}
	res := Result{Legal: true}
	g.choice = nil
	g.relocate(opt.RookID, opt.To)
	g.run(&res)
	return res, nil
}

// Promote answers a pending promotion question.
func (g *Game) Promote(k Kind) (Result, error) {
	if g.choice == nil || g.choice.Kind != ChoosePromotionChoice {
		return Result{}, ErrNoChoicePending
	}
	if !IsPromotionKind(k) {
		return Result{}, fmt.Errorf("%w: cannot promote to %s", ErrInvalidChoice, k)
	}
	res := Result{Legal: true, Promoted: true}
	id := g.choice.PieceID
	g.choice = nil
	g.promote(id, k)
	g.run(&res)
	return res, nil
}

func (g *Game) ready() error {
	switch g.phase {
	case Finished:
		return ErrGameOver
	case AwaitingChoice:
		return ErrChoicePending
	}
	return nil
}

func (g *Game) clearSelection() {
	if g.State.Selected != nil {
		g.State.Selected.Selected = false
		g.State.Selected = nil
	}
	g.phase = AwaitingSelection
}

// run applies queued completions in order. It stops at a question the
// chooser defers and finishes the turn once the queue is empty.
func (g *Game) run(res *Result) {
	for len(g.queue) > 0 {
		a := g.queue[0]
		g.queue = g.queue[1:]

		switch a.Kind {
		case ActionMarkAdvancedTwo:
			if p := g.State.Piece(a.PieceID); p != nil {
				p.AdvancedTwoRound = g.State.Round
			}
		case ActionRelocate:
			g.relocate(a.PieceID, a.Target)
		case ActionChooseRook:
			if id, ok := g.chooser.ChooseRook(g.State, a.Options); ok {
				if opt, valid := findOption(a.Options, id); valid {
					g.relocate(opt.RookID, opt.To)
					continue
				}
			}
			g.ask(res, &Choice{Kind: ChooseRookChoice, PieceID: a.PieceID, Options: a.Options})
			return
		case ActionCheckPromotion:
			p := g.State.Piece(a.PieceID)
			if p == nil || p.Kind != Pawn || !g.State.FarEdge(p) {
				continue
			}
			if k, ok := g.chooser.ChoosePromotion(g.State, p); ok && IsPromotionKind(k) {
				g.promote(p.ID, k)
				res.Promoted = true
				continue
			}
			g.ask(res, &Choice{Kind: ChoosePromotionChoice, PieceID: p.ID})
			return
		case ActionNotify:
			res.Messages = append(res.Messages, a.Message)
		}
	}
	res.Pending = nil
	g.finishTurn(res)
}

func (g *Game) ask(res *Result, c *Choice) {
	g.choice = c
	g.phase = AwaitingChoice
	res.Pending = c
	g.emit(Event{Kind: EventChoice, PieceID: c.PieceID})
	g.log.Debug().Int("piece", c.PieceID).Int("kind", int(c.Kind)).Msg("waiting for choice")
}

func (g *Game) relocate(id int, to board.Position) {
	p := g.State.Piece(id)
	if p == nil {
		return
	}
	from := p.Position
	g.State.ApplyMove(id, to, false)
	g.emit(Event{Kind: EventMoved, PieceID: id, PlayerID: p.Owner.ID, From: from, To: to})
}

// promote replaces a pawn by a new piece keeping id, first-move state and owner.
func (g *Game) promote(id int, k Kind) {
	old := g.State.Piece(id)
	if old == nil {
		return
	}
	np := NewPiece(old.ID, k, old.Position)
	np.Start = old.Start
	np.FirstMove = old.FirstMove
	old.Owner.replacePiece(np)
	g.emit(Event{Kind: EventReplaced, PieceID: id, PlayerID: np.Owner.ID, To: np.Position, NewKind: k})
	g.log.Info().Int("id", id).Str("kind", k.String()).Msg("pawn promoted")
}

// finishTurn passes the turn and reports the new player's situation.
// In games of more than two players a mated player is eliminated and
// play continues with the next one.
func (g *Game) finishTurn(res *Result) {
	mover := g.State.Current()
	g.phase = AwaitingSelection
	g.status = ""

	if g.State.ActivePlayers() <= 1 {
		g.winner = mover
		g.setStatus(res, fmt.Sprintf("Last player standing: %s wins", mover.Name))
		g.phase = Finished
		return
	}

	for {
		if g.State.advance() && g.Variant == Shrinking {
			if cells := shrink(g.State, g.shrinkEvery); len(cells) > 0 {
				g.emit(Event{Kind: EventCellsRemoved, Cells: cells})
				g.log.Info().Ints("cells", cells).Int("round", g.State.Round).Msg("board shrank")
			}
		}

		pl := g.State.Current()
		inCheck := g.State.IsCheck(pl)
		if g.hasLegalMove(pl) {
			if inCheck {
				g.setStatus(res, fmt.Sprintf("Check: %s", pl.Name))
			}
			return
		}

		if !inCheck {
			g.setStatus(res, fmt.Sprintf("Stalemate: %s cannot move", pl.Name))
			g.phase = Finished
			return
		}
		if g.State.ActivePlayers() <= 2 {
			g.winner = mover
			g.setStatus(res, fmt.Sprintf("Checkmate: %s wins", mover.Name))
			g.phase = Finished
			return
		}
		g.eliminate(pl)
		g.setStatus(res, fmt.Sprintf("Checkmate: %s is out", pl.Name))
	}
}

func (g *Game) hasLegalMove(pl *Player) bool {
	if g.workers <= 1 {
		return g.State.HasLegalMoves(pl)
	}
	_, ok, err := g.State.FindEscapeParallel(context.Background(), pl, g.workers)
	if err != nil {
		g.log.Error().Err(err).Msg("escape search failed")
		return g.State.HasLegalMoves(pl)
	}
	return ok
}

// eliminate takes a mated or kingless player out of the rotation and off
// the board.
func (g *Game) eliminate(pl *Player) {
	pl.Eliminated = true
	for _, p := range pl.Pieces {
		g.emit(Event{Kind: EventRemoved, PieceID: p.ID, PlayerID: pl.ID, From: p.Position})
	}
	pl.Pieces = nil
	g.emit(Event{Kind: EventEliminated, PlayerID: pl.ID})
	g.log.Info().Str("player", pl.Name).Msg("player eliminated")
}

func (g *Game) setStatus(res *Result, s string) {
	g.status = s
	res.Status = s
	g.emit(Event{Kind: EventStatus, Message: s})
	g.log.Info().Str("status", s).Msg("status")
}

func (g *Game) emit(e Event) {
	if g.observer != nil {
		g.observer.Notify(e)
	}
}

func findOption(opts []RookOption, rookID int) (RookOption, bool) {
	for _, o := range opts {
		if o.RookID == rookID {
			return o, true
		}
	}
	return RookOption{}, false
}
