// Package protocol implements a line-oriented text protocol for playing
// games: taps, choices, board dumps, saved games and diagrams.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/diagram"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/storage"
)

// Config holds the settings new games are created with.
type Config struct {
	Variant     game.Variant
	Workers     int
	ShrinkEvery int
}

// Protocol reads commands from in and writes replies to out.
type Protocol struct {
	in  io.Reader
	out io.Writer
	log zerolog.Logger

	config Config
	store  *storage.Storage

	game     *game.Game
	started  time.Time
	recorded bool
}

// New creates a protocol handler. store may be nil, which disables the
// save, load, list, delete and stats commands.
func New(in io.Reader, out io.Writer, cfg Config, store *storage.Storage, log zerolog.Logger) *Protocol {
	return &Protocol{
		in:     in,
		out:    out,
		log:    log,
		config: cfg,
		store:  store,
	}
}

// Game returns the game in progress, or nil.
func (p *Protocol) Game() *game.Game {
	return p.game
}

// Run starts the main loop. It returns when the input ends or on quit.
func (p *Protocol) Run() error {
	scanner := bufio.NewScanner(p.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "new":
			err = p.handleNew(args)
		case "tap":
			err = p.handleTap(args)
		case "move":
			err = p.handleMove(args)
		case "moves":
			err = p.handleMoves(args)
		case "rook":
			err = p.handleRook(args)
		case "promote":
			err = p.handlePromote(args)
		case "d":
			err = p.handleDisplay()
		case "status":
			err = p.handleStatus()
		case "save":
			err = p.handleSave(args)
		case "load":
			err = p.handleLoad(args)
		case "list":
			err = p.handleList()
		case "delete":
			err = p.handleDelete(args)
		case "stats":
			err = p.handleStats(args)
		case "svg":
			err = p.handleSVG(args)
		case "help":
			p.handleHelp()
		case "quit":
			return nil
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}

		if err != nil {
			p.log.Debug().Err(err).Str("line", line).Msg("command failed")
			fmt.Fprintf(p.out, "error %v\n", err)
		}
	}

	return scanner.Err()
}

func (p *Protocol) handleHelp() {
	fmt.Fprintln(p.out, "commands:")
	fmt.Fprintln(p.out, "  new [standard|four-player|shrinking|armada]")
	fmt.Fprintln(p.out, "  tap <row> <col>")
	fmt.Fprintln(p.out, "  move <row> <col> <row> <col>")
	fmt.Fprintln(p.out, "  moves <row> <col>")
	fmt.Fprintln(p.out, "  rook <id>")
	fmt.Fprintln(p.out, "  promote <q|r|b|n>")
	fmt.Fprintln(p.out, "  d | status | list | stats [variant]")
	fmt.Fprintln(p.out, "  save <name> | load <name> | delete <name>")
	fmt.Fprintln(p.out, "  svg <file>")
	fmt.Fprintln(p.out, "  quit")
}

// handleNew starts a game of the given or configured variant.
func (p *Protocol) handleNew(args []string) error {
	v := p.config.Variant
	if len(args) > 0 {
		var err error
		if v, err = game.ParseVariant(args[0]); err != nil {
			return err
		}
	}

	p.start(game.NewGame(v, p.options()...))

	if p.store != nil {
		prefs, err := p.store.LoadPreferences()
		if err == nil {
			prefs.Variant = v.String()
			err = p.store.SavePreferences(prefs)
		}
		if err != nil {
			p.log.Warn().Err(err).Msg("could not save preferences")
		}
	}

	fmt.Fprintf(p.out, "ok new %s\n", v)
	p.printTurn()
	return nil
}

func (p *Protocol) options() []game.Option {
	return []game.Option{
		game.WithLogger(p.log),
		game.WithObserver(game.ObserverFunc(p.onEvent)),
		game.WithWorkers(p.config.Workers),
		game.WithShrinkEvery(p.config.ShrinkEvery),
	}
}

func (p *Protocol) start(g *game.Game) {
	p.game = g
	p.started = time.Now()
	p.recorded = g.Phase() == game.Finished
}

func (p *Protocol) onEvent(e game.Event) {
	switch e.Kind {
	case game.EventCellsRemoved:
		cells := make([]string, len(e.Cells))
		for i, idx := range e.Cells {
			cells[i] = p.game.State.Board.Position(idx).String()
		}
		fmt.Fprintf(p.out, "info removed cells %s\n", strings.Join(cells, " "))
	case game.EventEliminated:
		if pl := p.game.State.Player(e.PlayerID); pl != nil {
			fmt.Fprintf(p.out, "info eliminated %s\n", pl.Name)
		}
	}
	p.log.Trace().
		Str("kind", e.Kind.String()).
		Int("piece", e.PieceID).
		Int("player", e.PlayerID).
		Msg("event")
}

func (p *Protocol) current() (*game.Game, error) {
	if p.game == nil {
		return nil, game.ErrNoGame
	}
	return p.game, nil
}

func (p *Protocol) handleTap(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	pos, err := parsePositions(args, 1)
	if err != nil {
		return err
	}

	res, err := g.Tap(pos[0])
	if err != nil {
		return err
	}
	if g.Phase() == game.AwaitingDestination {
		fmt.Fprintf(p.out, "selected %s\n", g.State.Selected)
		return nil
	}
	p.printResult(res)
	return nil
}

func (p *Protocol) handleMove(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	pos, err := parsePositions(args, 2)
	if err != nil {
		return err
	}
	res, err := g.Move(pos[0], pos[1])
	if err != nil {
		return err
	}
	p.printResult(res)
	return nil
}

func (p *Protocol) handleMoves(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	pos, err := parsePositions(args, 1)
	if err != nil {
		return err
	}
	piece := g.State.PieceAt(pos[0])
	if piece == nil {
		return fmt.Errorf("no piece on %s", pos[0])
	}

	dests := g.State.LegalMoves(piece)
	cells := make([]string, len(dests))
	for i, d := range dests {
		cells[i] = d.String()
	}
	fmt.Fprintf(p.out, "moves %s %s\n", piece, strings.Join(cells, " "))
	return nil
}

func (p *Protocol) handleRook(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: rook <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid rook id %q", args[0])
	}
	res, err := g.ChooseRook(id)
	if err != nil {
		return err
	}
	p.printResult(res)
	return nil
}

func (p *Protocol) handlePromote(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: promote <q|r|b|n>")
	}
	k, err := game.ParseKind(args[0])
	if err != nil {
		return err
	}
	res, err := g.Promote(k)
	if err != nil {
		return err
	}
	p.printResult(res)
	return nil
}

func (p *Protocol) handleDisplay() error {
	g, err := p.current()
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, g.State.String())
	return nil
}

func (p *Protocol) handleStatus() error {
	g, err := p.current()
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "variant %s\n", g.Variant)
	fmt.Fprintf(p.out, "phase %s\n", g.Phase())
	fmt.Fprintf(p.out, "turn %s\n", g.State.Current())
	fmt.Fprintf(p.out, "round %d\n", g.State.Round)
	if s := g.Status(); s != "" {
		fmt.Fprintf(p.out, "status %s\n", s)
	}
	if c := g.Pending(); c != nil {
		p.printChoice(c)
	}
	return nil
}

func (p *Protocol) handleSave(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	if p.store == nil {
		return errors.New("storage disabled")
	}
	if len(args) != 1 {
		return errors.New("usage: save <name>")
	}
	if err := p.store.SaveGame(args[0], g); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "ok saved %s\n", args[0])
	return nil
}

func (p *Protocol) handleLoad(args []string) error {
	if p.store == nil {
		return errors.New("storage disabled")
	}
	if len(args) != 1 {
		return errors.New("usage: load <name>")
	}
	saved, err := p.store.LoadGame(args[0])
	if err != nil {
		return err
	}
	g, err := game.ResumeRecord(saved.Record, p.options()...)
	if err != nil {
		return err
	}
	p.start(g)
	fmt.Fprintf(p.out, "ok loaded %s %s\n", saved.Name, g.Variant)
	p.printTurn()
	if c := g.Pending(); c != nil {
		p.printChoice(c)
	}
	return nil
}

func (p *Protocol) handleList() error {
	if p.store == nil {
		return errors.New("storage disabled")
	}
	names, err := p.store.ListGames()
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "games %s\n", strings.Join(names, " "))
	return nil
}

func (p *Protocol) handleDelete(args []string) error {
	if p.store == nil {
		return errors.New("storage disabled")
	}
	if len(args) != 1 {
		return errors.New("usage: delete <name>")
	}
	if err := p.store.DeleteGame(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "ok deleted %s\n", args[0])
	return nil
}

func (p *Protocol) handleStats(args []string) error {
	if p.store == nil {
		return errors.New("storage disabled")
	}
	v := p.config.Variant
	if p.game != nil {
		v = p.game.Variant
	}
	if len(args) > 0 {
		var err error
		if v, err = game.ParseVariant(args[0]); err != nil {
			return err
		}
	}
	stats, err := p.store.LoadStats(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "stats %s played %d decisive %d draws %d eliminations %d longest %d\n",
		v, stats.GamesPlayed, stats.Decisive, stats.Draws, stats.Eliminations, stats.LongestRounds)
	return nil
}

func (p *Protocol) handleSVG(args []string) error {
	g, err := p.current()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: svg <file>")
	}

	opts := diagram.DefaultOptions()
	if sel := g.State.Selected; sel != nil {
		opts.Highlight = g.State.LegalMoves(sel)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := diagram.WriteOptions(f, g.State, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "ok svg %s\n", args[0])
	return nil
}

// printResult reports a move or choice outcome.
func (p *Protocol) printResult(res game.Result) {
	for _, m := range res.Messages {
		fmt.Fprintf(p.out, "info %s\n", m)
	}
	if !res.Legal {
		fmt.Fprintf(p.out, "illegal %s\n", res.Failed)
		return
	}

	var b strings.Builder
	b.WriteString("ok")
	for _, id := range res.Captured {
		fmt.Fprintf(&b, " captured %d", id)
	}
	if res.Promoted {
		b.WriteString(" promoted")
	}
	fmt.Fprintln(p.out, b.String())

	if res.Pending != nil {
		p.printChoice(res.Pending)
		return
	}
	if res.Status != "" {
		fmt.Fprintf(p.out, "status %s\n", res.Status)
	}
	p.finish()
	p.printTurn()
}

func (p *Protocol) printChoice(c *game.Choice) {
	switch c.Kind {
	case game.ChooseRookChoice:
		opts := make([]string, len(c.Options))
		for i, o := range c.Options {
			opts[i] = fmt.Sprintf("%d@%s", o.RookID, o.From)
		}
		fmt.Fprintf(p.out, "choose rook %s\n", strings.Join(opts, " "))
	case game.ChoosePromotionChoice:
		kinds := make([]string, len(game.PromotionKinds))
		for i, k := range game.PromotionKinds {
			kinds[i] = string(k.Char())
		}
		fmt.Fprintf(p.out, "choose promotion %s\n", strings.Join(kinds, " "))
	}
}

func (p *Protocol) printTurn() {
	if p.game.Phase() == game.Finished {
		fmt.Fprintln(p.out, "game over")
		return
	}
	fmt.Fprintf(p.out, "turn %s round %d\n", p.game.State.Current(), p.game.State.Round)
}

// finish records the result of a game once it is over.
func (p *Protocol) finish() {
	if p.recorded || p.game.Phase() != game.Finished {
		return
	}
	p.recorded = true
	if p.store == nil {
		return
	}
	if err := p.store.RecordResult(storage.ResultOf(p.game, time.Since(p.started))); err != nil {
		p.log.Warn().Err(err).Msg("could not record result")
	}
}

// parsePositions reads n row/column pairs.
func parsePositions(args []string, n int) ([]board.Position, error) {
	if len(args) != 2*n {
		return nil, fmt.Errorf("expected %d coordinates, got %d", 2*n, len(args))
	}
	out := make([]board.Position, n)
	for i := range out {
		row, err := strconv.Atoi(args[2*i])
		if err != nil {
			return nil, fmt.Errorf("invalid row %q", args[2*i])
		}
		col, err := strconv.Atoi(args[2*i+1])
		if err != nil {
			return nil, fmt.Errorf("invalid column %q", args[2*i+1])
		}
		out[i] = board.NewPosition(row, col)
	}
	return out, nil
}
