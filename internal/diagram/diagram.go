// Package diagram draws SVG board diagrams of a game state.
package diagram

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Options controls the drawing.
type Options struct {
	// CellSize is the edge length of one cell in pixels.
	CellSize int

	// Coordinates draws row and column numbers along the edges.
	Coordinates bool

	// Highlight marks extra cells, such as the legal moves of a piece.
	Highlight []board.Position
}

// DefaultOptions returns the options used by Write.
func DefaultOptions() Options {
	return Options{CellSize: 48, Coordinates: true}
}

const (
	lightCell  = "fill:#f0d9b5"
	darkCell   = "fill:#b58863"
	absentCell = "fill:#3c3c3c"
	selectCell = "fill:#f6f669;fill-opacity:0.6"
	markCell   = "fill:#6ab04c;fill-opacity:0.45"
	labelStyle = "font-family:sans-serif;font-size:11px;fill:#666;text-anchor:middle"
)

var ownerColors = map[string][2]string{
	"white":  {"#fafafa", "#222"},
	"black":  {"#222", "#fafafa"},
	"red":    {"#c0392b", "#fff"},
	"blue":   {"#2e86de", "#fff"},
	"yellow": {"#f1c40f", "#222"},
	"green":  {"#27ae60", "#fff"},
}

var fallbackColors = [][2]string{
	{"#8e44ad", "#fff"},
	{"#16a085", "#fff"},
	{"#d35400", "#fff"},
	{"#7f8c8d", "#fff"},
}

func colors(pl *game.Player) (fill, text string) {
	if c, ok := ownerColors[strings.ToLower(pl.Name)]; ok {
		return c[0], c[1]
	}
	c := fallbackColors[pl.ID%len(fallbackColors)]
	return c[0], c[1]
}

// Write draws s with the default options.
func Write(w io.Writer, s *game.State) error {
	return WriteOptions(w, s, DefaultOptions())
}

// WriteOptions draws s as an SVG document.
func WriteOptions(w io.Writer, s *game.State, opts Options) error {
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultOptions().CellSize
	}
	cs := opts.CellSize
	margin := 0
	if opts.Coordinates {
		margin = cs / 2
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	width := s.Board.Columns*cs + 2*margin
	height := s.Board.Rows*cs + 2*margin
	canvas.Start(width, height)
	canvas.Title(fmt.Sprintf("%dx%d board, %s to move", s.Board.Rows, s.Board.Columns, s.Current()))

	canvas.Gid("cells")
	for r := 0; r < s.Board.Rows; r++ {
		for c := 0; c < s.Board.Columns; c++ {
			pos := board.NewPosition(r, c)
			x, y := margin+c*cs, margin+r*cs
			style := lightCell
			switch {
			case !s.Board.Contains(pos):
				style = absentCell
			case (r+c)%2 == 1:
				style = darkCell
			}
			canvas.Rect(x, y, cs, cs, style)
		}
	}
	canvas.Gend()

	canvas.Gid("marks")
	if s.Selected != nil {
		canvas.Rect(margin+s.Selected.Position.Col*cs, margin+s.Selected.Position.Row*cs, cs, cs, selectCell)
	}
	for _, pos := range opts.Highlight {
		if s.Board.Contains(pos) {
			canvas.Circle(margin+pos.Col*cs+cs/2, margin+pos.Row*cs+cs/2, cs/6, markCell)
		}
	}
	canvas.Gend()

	canvas.Gid("pieces")
	radius := cs * 2 / 5
	font := fmt.Sprintf("font-family:sans-serif;font-weight:bold;font-size:%dpx;text-anchor:middle", cs/2)
	for _, pl := range s.Players {
		fill, text := colors(pl)
		for _, p := range pl.Pieces {
			cx := margin + p.Position.Col*cs + cs/2
			cy := margin + p.Position.Row*cs + cs/2
			canvas.Circle(cx, cy, radius, fmt.Sprintf("fill:%s;stroke:#111;stroke-width:1", fill))
			canvas.Text(cx, cy+cs/6, strings.ToUpper(string(p.Kind.Char())), font+";fill:"+text)
		}
	}
	canvas.Gend()

	if opts.Coordinates {
		canvas.Gid("coordinates")
		for c := 0; c < s.Board.Columns; c++ {
			canvas.Text(margin+c*cs+cs/2, margin/2+4, fmt.Sprint(c), labelStyle)
		}
		for r := 0; r < s.Board.Rows; r++ {
			canvas.Text(margin/2, margin+r*cs+cs/2+4, fmt.Sprint(r), labelStyle)
		}
		canvas.Gend()
	}

	canvas.End()
	return ew.err
}

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
