package board

import "testing"

func TestGridIndexing(t *testing.T) {
	g := NewGrid(8, 10)

	tests := []struct {
		pos   Position
		index int
	}{
		{NewPosition(0, 0), 0},
		{NewPosition(0, 9), 9},
		{NewPosition(1, 0), 10},
		{NewPosition(7, 9), 79},
	}

	for _, tc := range tests {
		t.Run(tc.pos.String(), func(t *testing.T) {
			if got := g.Index(tc.pos); got != tc.index {
				t.Errorf("Index(%v) = %d, want %d", tc.pos, got, tc.index)
			}
			if got := g.Position(tc.index); got != tc.pos {
				t.Errorf("Position(%d) = %v, want %v", tc.index, got, tc.pos)
			}
		})
	}
}

func TestGridValidity(t *testing.T) {
	g := NewGrid(8, 8)

	if !g.IsValidCell(0) || !g.IsValidCell(63) {
		t.Error("Expected corner cells to be valid")
	}
	if g.IsValidCell(-1) || g.IsValidCell(64) {
		t.Error("Expected out of range indices to be invalid")
	}
	if g.Contains(NewPosition(0, 8)) {
		t.Error("Column 8 wraps into the next row and must not be contained")
	}

	g.MarkAbsent(27)
	if g.IsValidCell(27) {
		t.Error("Expected absent cell to be invalid")
	}
	if g.Contains(NewPosition(3, 3)) {
		t.Error("Expected absent position to be outside the board")
	}

	// Out of range marks are ignored.
	g.MarkAbsent(100)
	if got := g.Absent(); len(got) != 1 || got[0] != 27 {
		t.Errorf("Absent() = %v, want [27]", got)
	}
	if got := len(g.Cells()); got != 63 {
		t.Errorf("len(Cells()) = %d, want 63", got)
	}
}

func TestGridCopyIsIndependent(t *testing.T) {
	g := NewGrid(4, 4)
	c := g.Copy()
	c.MarkAbsent(5)

	if !g.IsValidCell(5) {
		t.Error("Marking the copy must not change the original")
	}
	if c.IsValidCell(5) {
		t.Error("Expected copy cell to be absent")
	}
}

func TestGridRing(t *testing.T) {
	g := NewGrid(8, 8)
	if got := len(g.Ring(0)); got != 28 {
		t.Errorf("len(Ring(0)) = %d, want 28", got)
	}
	if got := len(g.Ring(3)); got != 4 {
		t.Errorf("len(Ring(3)) = %d, want 4", got)
	}
	g.MarkAbsent(0)
	if got := len(g.Ring(0)); got != 27 {
		t.Errorf("len(Ring(0)) after removal = %d, want 27", got)
	}
}
