package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewMemoryStorage(zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Variant != "standard" {
			t.Errorf("Expected variant 'standard', got '%s'", prefs.Variant)
		}
		if prefs.Workers != 1 {
			t.Errorf("Expected one worker")
		}
	})

	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.DrawRate() != 0 {
			t.Errorf("Expected 0 draw rate")
		}
	})

	t.Run("DrawRate", func(t *testing.T) {
		stats := &GameStats{GamesPlayed: 8, Decisive: 6, Draws: 2}
		if rate := stats.DrawRate(); rate != 25 {
			t.Errorf("Expected 25%% draw rate, got %.2f%%", rate)
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := newTestStorage(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("Expected first launch to be complete")
	}
}

func TestPreferences(t *testing.T) {
	s := newTestStorage(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Variant != "standard" {
		t.Errorf("Expected defaults, got %+v", prefs)
	}

	prefs.Variant = "armada"
	prefs.Workers = 4
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.Variant != "armada" || got.Workers != 4 {
		t.Errorf("LoadPreferences = %+v", got)
	}
}

func TestSaveAndLoadGame(t *testing.T) {
	s := newTestStorage(t)

	g := game.NewGame(game.FourPlayer)
	if _, err := g.Move(board.NewPosition(12, 5), board.NewPosition(10, 5)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGame("club", g); err != nil {
		t.Fatalf("SaveGame failed: %v", err)
	}

	saved, err := s.LoadGame("club")
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if saved.Name != "club" || saved.Record.Variant != "four-player" {
		t.Errorf("saved = %s %s", saved.Name, saved.Record.Variant)
	}

	restored, err := game.ResumeRecord(saved.Record)
	if err != nil {
		t.Fatalf("ResumeRecord failed: %v", err)
	}
	if restored.State.Turn != 1 {
		t.Errorf("Turn = %d, want 1", restored.State.Turn)
	}
	if restored.State.PieceAt(board.NewPosition(10, 5)) == nil {
		t.Error("Moved pawn missing after reload")
	}
}

func TestSaveGameRejectsBadName(t *testing.T) {
	s := newTestStorage(t)
	for _, name := range []string{"", "two words"} {
		if err := s.SaveGame(name, game.NewGame(game.Standard)); err == nil {
			t.Errorf("SaveGame(%q) succeeded", name)
		}
	}
}

func TestListAndDeleteGames(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.SaveGame(name, game.NewGame(game.Standard)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SavePreferences(DefaultPreferences()); err != nil {
		t.Fatal(err)
	}

	names, err := s.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("ListGames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListGames[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	if err := s.DeleteGame("mid"); err != nil {
		t.Fatalf("DeleteGame failed: %v", err)
	}
	if _, err := s.LoadGame("mid"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("LoadGame after delete: err = %v", err)
	}
	if err := s.DeleteGame("mid"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("second DeleteGame: err = %v", err)
	}
}

func TestRecordResult(t *testing.T) {
	s := newTestStorage(t)

	results := []GameResult{
		{Variant: game.Standard, Winner: "White", Rounds: 30, Duration: time.Minute},
		{Variant: game.Standard, Winner: "", Rounds: 55, Duration: 2 * time.Minute},
		{Variant: game.Standard, Winner: "White", Rounds: 12, Duration: time.Minute},
		{Variant: game.FourPlayer, Winner: "Blue", Rounds: 40, Eliminated: []string{"Red", "Green"}},
	}
	for _, r := range results {
		if err := s.RecordResult(r); err != nil {
			t.Fatal(err)
		}
	}

	std, err := s.LoadStats(game.Standard)
	if err != nil {
		t.Fatal(err)
	}
	if std.GamesPlayed != 3 || std.Decisive != 2 || std.Draws != 1 {
		t.Errorf("standard stats = %+v", std)
	}
	if std.WinsByPlayer["White"] != 2 || std.LongestRounds != 55 {
		t.Errorf("standard stats = %+v", std)
	}
	if std.TotalPlayTime != 4*time.Minute {
		t.Errorf("TotalPlayTime = %v", std.TotalPlayTime)
	}

	four, err := s.LoadStats(game.FourPlayer)
	if err != nil {
		t.Fatal(err)
	}
	if four.GamesPlayed != 1 || four.Eliminations != 2 || four.WinsByPlayer["Blue"] != 1 {
		t.Errorf("four-player stats = %+v", four)
	}

	armada, err := s.LoadStats(game.Armada)
	if err != nil {
		t.Fatal(err)
	}
	if armada.GamesPlayed != 0 {
		t.Errorf("armada stats = %+v", armada)
	}
}

func TestResultOf(t *testing.T) {
	g := game.NewGame(game.Standard)
	moves := [][2]board.Position{
		{board.NewPosition(6, 5), board.NewPosition(5, 5)},
		{board.NewPosition(1, 4), board.NewPosition(3, 4)},
		{board.NewPosition(6, 6), board.NewPosition(4, 6)},
		{board.NewPosition(0, 3), board.NewPosition(4, 7)},
	}
	for _, m := range moves {
		if _, err := g.Move(m[0], m[1]); err != nil {
			t.Fatal(err)
		}
	}

	res := ResultOf(g, time.Second)
	if res.Winner != "Black" || res.Variant != game.Standard || res.Rounds != 2 {
		t.Errorf("ResultOf = %+v", res)
	}
}

func TestOnDiskStorage(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStorage(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if err := s.SaveGame("persist", game.NewGame(game.Shrinking)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("database directory missing: %v", err)
	}

	s, err = NewStorage(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if _, err := s.LoadGame("persist"); err != nil {
		t.Errorf("LoadGame after reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv(DataDirEnv, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}

func TestDataDirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "games")
	t.Setenv(DataDirEnv, dir)

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir != dir {
		t.Errorf("GetDataDir = %q, want %q", dataDir, dir)
	}

	dbDir, err := GetDatabaseDir("")
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if want := filepath.Join(dir, "db"); dbDir != want {
		t.Errorf("GetDatabaseDir = %q, want %q", dbDir, want)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}
