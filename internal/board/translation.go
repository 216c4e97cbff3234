package board

import "fmt"

// Direction is the board-relative orientation a player moves toward.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	default:
		return "None"
	}
}

// ParseDirection parses a direction name as produced by String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "Up", "up":
		return Up, nil
	case "Right", "right":
		return Right, nil
	case "Down", "down":
		return Down, nil
	case "Left", "left":
		return Left, nil
	}
	return Up, fmt.Errorf("invalid direction: %s", s)
}

// forward returns the absolute (row, col) unit step of the direction.
func (d Direction) forward() (int, int) {
	switch d {
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	default:
		return -1, 0
	}
}

// right returns the unit step to the right of a piece facing d.
// It is the forward step turned a quarter clockwise on screen.
func (d Direction) right() (int, int) {
	fr, fc := d.forward()
	return fc, -fr
}

// Translation is a displacement relative to a piece's own cell.
// Forward counts steps toward the owner's direction, Right counts steps
// to the owner's right hand. Negative values step backward or left.
type Translation struct {
	Forward int
	Right   int
}

// NewTranslation creates a translation.
func NewTranslation(forward, right int) Translation {
	return Translation{Forward: forward, Right: right}
}

// IsZero returns true for the null displacement.
func (t Translation) IsZero() bool {
	return t.Forward == 0 && t.Right == 0
}

// Scale returns the translation multiplied by n.
func (t Translation) Scale(n int) Translation {
	return Translation{Forward: t.Forward * n, Right: t.Right * n}
}

// String returns the "forward,right" form of the translation.
func (t Translation) String() string {
	return fmt.Sprintf("%+d,%+d", t.Forward, t.Right)
}

// Resolve returns the cell reached from p by t for a piece facing d.
func (d Direction) Resolve(p Position, t Translation) Position {
	fr, fc := d.forward()
	rr, rc := d.right()
	return Position{
		Row: p.Row + t.Forward*fr + t.Right*rr,
		Col: p.Col + t.Forward*fc + t.Right*rc,
	}
}

// Between returns the translation that takes a piece facing d from one cell to another.
func (d Direction) Between(from, to Position) Translation {
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	fr, fc := d.forward()
	rr, rc := d.right()
	return Translation{
		Forward: dRow*fr + dCol*fc,
		Right:   dRow*rr + dCol*rc,
	}
}

// Path returns the translations strictly between the origin and t along a
// straight or diagonal line. It returns nil when t is not such a line.
func (t Translation) Path() []Translation {
	f, r := abs(t.Forward), abs(t.Right)
	if t.IsZero() || (f != 0 && r != 0 && f != r) {
		return nil
	}
	steps := max(f, r)
	step := Translation{Forward: sign(t.Forward), Right: sign(t.Right)}
	path := make([]Translation, 0, steps-1)
	for i := 1; i < steps; i++ {
		path = append(path, step.Scale(i))
	}
	return path
}

// IsStraight returns true for a non-zero displacement along one axis.
func (t Translation) IsStraight() bool {
	return !t.IsZero() && (t.Forward == 0 || t.Right == 0)
}

// IsDiagonal returns true for a non-zero displacement along a diagonal.
func (t Translation) IsDiagonal() bool {
	return !t.IsZero() && abs(t.Forward) == abs(t.Right)
}

// Span returns the larger of the two absolute components.
func (t Translation) Span() int {
	return max(abs(t.Forward), abs(t.Right))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
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
