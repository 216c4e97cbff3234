package game

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSnapshotIsIndependent(t *testing.T) {
	s := Standard.Setup()
	pawn := mustPiece(t, s, pos(6, 4))

	snap := s.Snapshot()
	snap.ApplyMove(pawn.ID, pos(4, 4), true)
	snap.removeAt(pos(0, 0))
	snap.Board.MarkAbsent(0)
	snap.Round = 9

	if pawn.Position != pos(6, 4) || !pawn.FirstMove {
		t.Error("Snapshot move leaked into the live piece")
	}
	if s.PieceAt(pos(0, 0)) == nil {
		t.Error("Snapshot removal leaked into the live state")
	}
	if !s.Board.Contains(pos(0, 0)) || s.Round != 0 {
		t.Error("Snapshot board or counters leaked")
	}
	if p := snap.Piece(pawn.ID); p == nil || p.Position != pos(4, 4) {
		t.Errorf("snapshot piece = %v", p)
	}
	if snap.Piece(pawn.ID).Owner != snap.Players[0] {
		t.Error("Snapshot pieces must belong to snapshot players")
	}
}

func TestSnapshotDropsSelection(t *testing.T) {
	g := NewGame(Standard)
	if err := g.Select(pos(6, 0)); err != nil {
		t.Fatal(err)
	}
	if snap := g.State.Snapshot(); snap.Selected != nil {
		t.Error("Snapshot must not carry the selection")
	}
}

func TestNewStatePanicsOnSharedCell(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	s := Standard.Setup()
	white := s.Players[0]
	white.AddPiece(NewPiece(99, Queen, pos(7, 4)))
	NewState(s.Board, s.Players...)
}

func TestRecordRoundTrip(t *testing.T) {
	g := NewGame(Shrinking)
	mustMove(t, g, pos(6, 4), pos(4, 4)) // e4
	mustMove(t, g, pos(1, 0), pos(2, 0)) // a6
	mustMove(t, g, pos(4, 4), pos(3, 4)) // e5
	passed := mustPiece(t, g.State, pos(1, 3)).ID
	mustMove(t, g, pos(1, 3), pos(3, 3)) // d5
	g.State.Board.MarkAbsent(g.State.Board.Index(pos(4, 0)))

	data, err := json.Marshal(g.Record())
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	restored, err := ResumeRecord(rec)
	if err != nil {
		t.Fatalf("ResumeRecord failed: %v", err)
	}

	if restored.Variant != Shrinking {
		t.Errorf("Variant = %s", restored.Variant)
	}
	if restored.State.Board.Contains(pos(4, 0)) {
		t.Error("Absent cell must survive the round trip")
	}
	if restored.State.String() != g.State.String() {
		t.Errorf("board differs:\n%s\nwant:\n%s", restored.State, g.State)
	}
	d := restored.State.Piece(passed)
	if d == nil || d.AdvancedTwoRound != 1 || d.FirstMove || d.Start != pos(1, 3) {
		t.Fatalf("restored pawn = %+v", d)
	}

	// The en passant window survives as well.
	res := mustMove(t, restored, pos(3, 4), pos(2, 3))
	if len(res.Captured) != 1 || res.Captured[0] != passed {
		t.Errorf("Captured = %v, want [%d]", res.Captured, passed)
	}
}

func TestFromRecordRejects(t *testing.T) {
	valid := func() Record { return Standard.Setup().Record() }

	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"no board", func(r *Record) { r.Rows = 0 }},
		{"no players", func(r *Record) { r.Players = nil }},
		{"bad direction", func(r *Record) { r.Players[0].Direction = "north" }},
		{"bad kind", func(r *Record) { r.Players[0].Pieces[0].Kind = "Archbishop" }},
		{"duplicate id", func(r *Record) { r.Players[1].Pieces[0].ID = r.Players[0].Pieces[0].ID }},
		{"off board", func(r *Record) { r.Players[0].Pieces[0].Row = 8 }},
		{"shared cell", func(r *Record) { r.Players[1].Pieces[0].Row = 7 }},
		{"absent cell", func(r *Record) { r.Absent = []int{63} }},
		{"turn out of range", func(r *Record) { r.Turn = 2 }},
		{"first player out of range", func(r *Record) { r.FirstInRound = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(&rec)
			if _, err := FromRecord(rec); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("err = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestResumeRecordUnknownVariant(t *testing.T) {
	rec := Standard.Setup().Record()
	rec.Variant = "bughouse"
	if _, err := ResumeRecord(rec); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord", err)
	}
}

// reload saves g as JSON and resumes it.
func reload(t *testing.T, g *Game) *Game {
	t.Helper()
	data, err := json.Marshal(g.Record())
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	restored, err := ResumeRecord(rec)
	if err != nil {
		t.Fatalf("ResumeRecord failed: %v", err)
	}
	return restored
}

func TestRecordPendingPromotion(t *testing.T) {
	g := Resume(Standard, promotionBoard(t))
	pawnID := mustPiece(t, g.State, pos(1, 0)).ID
	mustMove(t, g, pos(1, 0), pos(0, 0))

	restored := reload(t, g)

	if restored.Phase() != AwaitingChoice {
		t.Fatalf("Phase = %s, want awaiting-choice", restored.Phase())
	}
	c := restored.Pending()
	if c == nil || c.Kind != ChoosePromotionChoice || c.PieceID != pawnID {
		t.Fatalf("Pending = %+v, want promotion of %d", c, pawnID)
	}
	if _, err := restored.Move(pos(7, 4), pos(7, 3)); !errors.Is(err, ErrChoicePending) {
		t.Errorf("Move while pending: err = %v", err)
	}

	res, err := restored.Promote(Queen)
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if !res.Promoted {
		t.Error("Expected promoted result")
	}
	if p := restored.State.Piece(pawnID); p == nil || p.Kind != Queen || p.Position != pos(0, 0) {
		t.Errorf("promoted piece = %+v", p)
	}
	if restored.State.Turn != 1 || restored.Phase() != AwaitingSelection {
		t.Errorf("Turn = %d phase = %s", restored.State.Turn, restored.Phase())
	}
}

func TestRecordPendingCastle(t *testing.T) {
	s := parseBoard(t,
		"...k....",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K..R",
	)
	aRook := mustPiece(t, s, pos(7, 0)).ID
	g := Resume(Standard, s)
	mustMove(t, g, pos(7, 4), pos(7, 6))

	restored := reload(t, g)

	c := restored.Pending()
	if c == nil || c.Kind != ChooseRookChoice || len(c.Options) != 2 {
		t.Fatalf("Pending = %+v, want rook choice with two options", c)
	}
	if _, err := restored.ChooseRook(aRook); err != nil {
		t.Fatalf("ChooseRook failed: %v", err)
	}
	if p := restored.State.Piece(aRook); p.Position != pos(7, 5) {
		t.Errorf("a-rook at %v, want 7,5", p.Position)
	}
	if restored.State.Turn != 1 {
		t.Errorf("Turn = %d, want 1", restored.State.Turn)
	}
}

func TestRecordFinishedGame(t *testing.T) {
	g := NewGame(Standard)
	mustMove(t, g, pos(6, 5), pos(5, 5))
	mustMove(t, g, pos(1, 4), pos(3, 4))
	mustMove(t, g, pos(6, 6), pos(4, 6))
	mustMove(t, g, pos(0, 3), pos(4, 7))

	restored := reload(t, g)

	if restored.Phase() != Finished {
		t.Errorf("Phase = %s, want finished", restored.Phase())
	}
	if w := restored.Winner(); w == nil || w.ID != 1 {
		t.Errorf("Winner = %v, want Black", w)
	}
	if restored.Status() != "Checkmate: Black wins" {
		t.Errorf("Status = %q", restored.Status())
	}
	if _, err := restored.Move(pos(6, 0), pos(5, 0)); !errors.Is(err, ErrGameOver) {
		t.Errorf("Move after reload: err = %v, want ErrGameOver", err)
	}
}

func TestResumeRecordRejectsTurnState(t *testing.T) {
	pending := func(t *testing.T) Record {
		g := Resume(Standard, promotionBoard(t))
		mustMove(t, g, pos(1, 0), pos(0, 0))
		return g.Record()
	}

	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"unknown phase", func(r *Record) { r.Phase = "awaiting-destination" }},
		{"choice phase without choice", func(r *Record) { r.Pending = nil }},
		{"choice without phase", func(r *Record) { r.Phase = "" }},
		{"finished with choice", func(r *Record) { r.Phase = Finished.String() }},
		{"unknown choice piece", func(r *Record) { r.Pending.PieceID = 99 }},
		{"unknown choice kind", func(r *Record) { r.Pending.Kind = "draw" }},
		{"promotion of a king", func(r *Record) { r.Pending.PieceID = r.Players[0].Pieces[1].ID }},
		{"unknown winner", func(r *Record) { w := 7; r.Winner = &w }},
		{"unknown action", func(r *Record) { r.Queue = []ActionRecord{{Kind: "teleport"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := pending(t)
			tt.mutate(&rec)
			if _, err := ResumeRecord(rec); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("err = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	s := parseBoard(t,
		"k..#",
		"....",
		"...K",
	)
	out := s.String()
	for _, want := range []string{"k . . # ", ". . . K ", "To move: White"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}
