package game

import (
	"errors"
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// PieceRecord is the serializable form of a Piece.
type PieceRecord struct {
	ID               int    `json:"id"`
	Kind             string `json:"kind"`
	Row              int    `json:"row"`
	Col              int    `json:"col"`
	StartRow         int    `json:"start_row"`
	StartCol         int    `json:"start_col"`
	FirstMove        bool   `json:"first_move"`
	AdvancedTwoRound int    `json:"advanced_two_round"`
}

// PlayerRecord is the serializable form of a Player.
type PlayerRecord struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Direction  string        `json:"direction"`
	Eliminated bool          `json:"eliminated,omitempty"`
	Pieces     []PieceRecord `json:"pieces"`
}

// Record is the serializable form of a State.
type Record struct {
	Variant      string         `json:"variant"`
	Rows         int            `json:"rows"`
	Columns      int            `json:"columns"`
	Absent       []int          `json:"absent,omitempty"`
	Players      []PlayerRecord `json:"players"`
	Turn         int            `json:"turn"`
	Round        int            `json:"round"`
	FirstInRound int            `json:"first_in_round"`

	// Phase is set only for a game waiting on a choice or already over.
	Phase   string         `json:"phase,omitempty"`
	Status  string         `json:"status,omitempty"`
	Winner  *int           `json:"winner,omitempty"`
	Pending *ChoiceRecord  `json:"pending,omitempty"`
	Queue   []ActionRecord `json:"queue,omitempty"`
}

// OptionRecord is the serializable form of a RookOption.
type OptionRecord struct {
	RookID  int `json:"rook_id"`
	FromRow int `json:"from_row"`
	FromCol int `json:"from_col"`
	ToRow   int `json:"to_row"`
	ToCol   int `json:"to_col"`
}

// ChoiceRecord is the serializable form of a pending Choice.
type ChoiceRecord struct {
	Kind    string         `json:"kind"`
	PieceID int            `json:"piece_id"`
	Options []OptionRecord `json:"options,omitempty"`
}

// ActionRecord is a completion still queued behind a pending choice.
type ActionRecord struct {
	Kind    string         `json:"kind"`
	PieceID int            `json:"piece_id"`
	Row     int            `json:"row"`
	Col     int            `json:"col"`
	Options []OptionRecord `json:"options,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Record returns the serializable form of the game.
func (g *Game) Record() Record {
	rec := g.State.Record()
	rec.Variant = g.Variant.String()
	rec.Status = g.status
	if g.phase == AwaitingChoice || g.phase == Finished {
		rec.Phase = g.phase.String()
	}
	if g.winner != nil {
		id := g.winner.ID
		rec.Winner = &id
	}
	if g.choice != nil {
		rec.Pending = &ChoiceRecord{
			Kind:    g.choice.Kind.String(),
			PieceID: g.choice.PieceID,
			Options: optionRecords(g.choice.Options),
		}
	}
	for _, a := range g.queue {
		rec.Queue = append(rec.Queue, ActionRecord{
			Kind:    a.Kind.String(),
			PieceID: a.PieceID,
			Row:     a.Target.Row,
			Col:     a.Target.Col,
			Options: optionRecords(a.Options),
			Message: a.Message,
		})
	}
	return rec
}

func optionRecords(opts []RookOption) []OptionRecord {
	var out []OptionRecord
	for _, o := range opts {
		out = append(out, OptionRecord{
			RookID:  o.RookID,
			FromRow: o.From.Row,
			FromCol: o.From.Col,
			ToRow:   o.To.Row,
			ToCol:   o.To.Col,
		})
	}
	return out
}

// Record returns the serializable form of the state.
func (s *State) Record() Record {
	rec := Record{
		Rows:         s.Board.Rows,
		Columns:      s.Board.Columns,
		Absent:       s.Board.Absent(),
		Turn:         s.Turn,
		Round:        s.Round,
		FirstInRound: s.FirstInRound,
	}
	for _, pl := range s.Players {
		pr := PlayerRecord{
			ID:         pl.ID,
			Name:       pl.Name,
			Direction:  pl.Direction.String(),
			Eliminated: pl.Eliminated,
		}
		for _, p := range pl.Pieces {
			pr.Pieces = append(pr.Pieces, PieceRecord{
				ID:               p.ID,
				Kind:             p.Kind.String(),
				Row:              p.Position.Row,
				Col:              p.Position.Col,
				StartRow:         p.Start.Row,
				StartCol:         p.Start.Col,
				FirstMove:        p.FirstMove,
				AdvancedTwoRound: p.AdvancedTwoRound,
			})
		}
		rec.Players = append(rec.Players, pr)
	}
	return rec
}

// FromRecord rebuilds a state from its serializable form. Unlike NewState
// it reports broken invariants as ErrInvalidRecord.
func FromRecord(rec Record) (*State, error) {
	if rec.Rows <= 0 || rec.Columns <= 0 {
		return nil, fmt.Errorf("%w: board size %dx%d", ErrInvalidRecord, rec.Rows, rec.Columns)
	}
	if len(rec.Players) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrInvalidRecord)
	}
	g := board.NewGrid(rec.Rows, rec.Columns)
	for _, idx := range rec.Absent {
		g.MarkAbsent(idx)
	}

	s := &State{
		Board:        g,
		Turn:         rec.Turn,
		Round:        rec.Round,
		FirstInRound: rec.FirstInRound,
	}
	for _, pr := range rec.Players {
		dir, err := board.ParseDirection(pr.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: player %d: %v", ErrInvalidRecord, pr.ID, err)
		}
		pl := NewPlayer(pr.ID, pr.Name, dir)
		pl.Eliminated = pr.Eliminated
		for _, r := range pr.Pieces {
			k, err := ParseKind(r.Kind)
			if err != nil {
				return nil, fmt.Errorf("%w: piece %d: %v", ErrInvalidRecord, r.ID, err)
			}
			p := NewPiece(r.ID, k, board.NewPosition(r.Row, r.Col))
			p.Start = board.NewPosition(r.StartRow, r.StartCol)
			p.FirstMove = r.FirstMove
			p.AdvancedTwoRound = r.AdvancedTwoRound
			pl.AddPiece(p)
		}
		s.Players = append(s.Players, pl)
	}
	if rec.FirstInRound < 0 || rec.FirstInRound >= len(s.Players) {
		return nil, fmt.Errorf("%w: first player index %d", ErrInvalidRecord, rec.FirstInRound)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return s, nil
}

// ResumeRecord continues a game from its serializable form.
func ResumeRecord(rec Record, opts ...Option) (*Game, error) {
	v, err := ParseVariant(rec.Variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	s, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}
	g := Resume(v, s, opts...)
	if err := g.restore(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return g, nil
}

// restore brings back the turn machine: a pending question with the
// completions queued behind it, or the outcome of a finished game.
func (g *Game) restore(rec Record) error {
	g.status = rec.Status
	if rec.Winner != nil {
		if g.winner = g.State.Player(*rec.Winner); g.winner == nil {
			return fmt.Errorf("unknown winner %d", *rec.Winner)
		}
	}

	switch rec.Phase {
	case "":
		if rec.Pending != nil || len(rec.Queue) > 0 {
			return fmt.Errorf("pending choice outside %s", AwaitingChoice)
		}
		if rec.Winner != nil {
			return errors.New("winner of a game in progress")
		}
		return nil
	case Finished.String():
		if rec.Pending != nil || len(rec.Queue) > 0 {
			return errors.New("pending choice in a finished game")
		}
		g.phase = Finished
		return nil
	case AwaitingChoice.String():
	default:
		return fmt.Errorf("unexpected phase %q", rec.Phase)
	}

	if rec.Pending == nil {
		return fmt.Errorf("%s without a choice", AwaitingChoice)
	}
	c, err := g.choiceFrom(*rec.Pending)
	if err != nil {
		return err
	}
	for _, ar := range rec.Queue {
		a, err := g.actionFrom(ar)
		if err != nil {
			return err
		}
		g.queue = append(g.queue, a)
	}
	g.choice = c
	g.phase = AwaitingChoice
	return nil
}

func (g *Game) choiceFrom(cr ChoiceRecord) (*Choice, error) {
	p := g.State.Piece(cr.PieceID)
	if p == nil {
		return nil, fmt.Errorf("choice names unknown piece %d", cr.PieceID)
	}
	opts, err := g.optionsFrom(cr.Options)
	if err != nil {
		return nil, err
	}
	switch cr.Kind {
	case ChooseRookChoice.String():
		if len(opts) == 0 {
			return nil, errors.New("rook choice without options")
		}
		return &Choice{Kind: ChooseRookChoice, PieceID: p.ID, Options: opts}, nil
	case ChoosePromotionChoice.String():
		if p.Kind != Pawn {
			return nil, fmt.Errorf("promotion of %s", p)
		}
		return &Choice{Kind: ChoosePromotionChoice, PieceID: p.ID}, nil
	}
	return nil, fmt.Errorf("unknown choice %q", cr.Kind)
}

func (g *Game) optionsFrom(ors []OptionRecord) ([]RookOption, error) {
	var opts []RookOption
	for _, o := range ors {
		if g.State.Piece(o.RookID) == nil {
			return nil, fmt.Errorf("rook option names unknown piece %d", o.RookID)
		}
		opts = append(opts, RookOption{
			RookID: o.RookID,
			From:   board.NewPosition(o.FromRow, o.FromCol),
			To:     board.NewPosition(o.ToRow, o.ToCol),
		})
	}
	return opts, nil
}

func (g *Game) actionFrom(ar ActionRecord) (Action, error) {
	for k := ActionRemove; k <= ActionNotify; k++ {
		if k.String() != ar.Kind {
			continue
		}
		opts, err := g.optionsFrom(ar.Options)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Kind:    k,
			PieceID: ar.PieceID,
			Target:  board.NewPosition(ar.Row, ar.Col),
			Options: opts,
			Message: ar.Message,
		}, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", ar.Kind)
}
