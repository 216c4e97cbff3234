package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/hailam/chessrules/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyFirstLaunch = "first_launch"
	prefixGame     = "game:"
	prefixStats    = "stats:"
)

// ErrGameNotFound is returned when no game is saved under a name.
var ErrGameNotFound = errors.New("saved game not found")

// Preferences stores user settings.
type Preferences struct {
	Variant     string    `json:"variant"`
	Workers     int       `json:"workers"`
	ShrinkEvery int       `json:"shrink_every"`
	LastPlayed  time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Variant:     game.Standard.String(),
		Workers:     1,
		ShrinkEvery: game.DefaultShrinkEvery,
		LastPlayed:  time.Now(),
	}
}

// SavedGame is a game stored under a name.
type SavedGame struct {
	Name    string      `json:"name"`
	Record  game.Record `json:"record"`
	Status  string      `json:"status,omitempty"`
	SavedAt time.Time   `json:"saved_at"`
}

// GameStats stores the statistics of one variant.
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	Decisive      int            `json:"decisive"`
	Draws         int            `json:"draws"`
	WinsByPlayer  map[string]int `json:"wins_by_player"`
	Eliminations  int            `json:"eliminations"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
	LongestRounds int            `json:"longest_rounds"`
}

// NewGameStats returns empty game statistics.
func NewGameStats() *GameStats {
	return &GameStats{WinsByPlayer: make(map[string]int)}
}

// DrawRate returns the share of drawn games as a percentage (0-100).
func (s *GameStats) DrawRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.GamesPlayed) * 100
}

// GameResult is the outcome of a finished game. An empty Winner is a draw.
type GameResult struct {
	Variant    game.Variant
	Winner     string
	Eliminated []string
	Rounds     int
	Duration   time.Duration
}

// ResultOf summarizes a finished game.
func ResultOf(g *game.Game, d time.Duration) GameResult {
	res := GameResult{Variant: g.Variant, Rounds: g.State.Round, Duration: d}
	if w := g.Winner(); w != nil {
		res.Winner = w.Name
	}
	for _, pl := range g.State.Players {
		if pl.Eliminated {
			res.Eliminated = append(res.Eliminated, pl.Name)
		}
	}
	return res
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// NewStorage opens the database under dataDir, or under the platform data
// directory when dataDir is empty.
func NewStorage(dataDir string, log zerolog.Logger) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("dir", dbDir).Msg("opening database")
	return open(badger.DefaultOptions(dbDir), log)
}

// NewMemoryStorage opens a database that lives in memory only.
func NewMemoryStorage(log zerolog.Logger) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log zerolog.Logger) (*Storage, error) {
	opts.Logger = badgerLogger{log.With().Str("component", "badger").Logger()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Storage{db: db, log: log}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch.
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveGame stores the game under name, replacing any game saved there.
func (s *Storage) SaveGame(name string, g *game.Game) error {
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("invalid game name %q", name)
	}
	saved := SavedGame{
		Name:    name,
		Record:  g.Record(),
		Status:  g.Status(),
		SavedAt: time.Now(),
	}
	if err := s.put(prefixGame+name, saved); err != nil {
		return fmt.Errorf("save game %s: %w", name, err)
	}
	s.log.Info().Str("name", name).Str("variant", saved.Record.Variant).Msg("game saved")
	return nil
}

// LoadGame returns the game saved under name.
func (s *Storage) LoadGame(name string) (*SavedGame, error) {
	var saved SavedGame
	found, err := s.get(prefixGame+name, &saved)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", name, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, name)
	}
	return &saved, nil
}

// ListGames returns the names of all saved games in sorted order.
func (s *Storage) ListGames() ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixGame)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, prefixGame))
		}
		return nil
	})

	return names, err
}

// DeleteGame removes the game saved under name.
func (s *Storage) DeleteGame(name string) error {
	key := []byte(prefixGame + name)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrGameNotFound, name)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// SaveStats saves the statistics of a variant.
func (s *Storage) SaveStats(v game.Variant, stats *GameStats) error {
	return s.put(prefixStats+v.String(), stats)
}

// LoadStats loads the statistics of a variant, returns empty stats if not found.
func (s *Storage) LoadStats(v game.Variant) (*GameStats, error) {
	stats := NewGameStats()
	_, err := s.get(prefixStats+v.String(), stats)
	return stats, err
}

// RecordResult records a finished game and updates the variant statistics.
func (s *Storage) RecordResult(result GameResult) error {
	stats, err := s.LoadStats(result.Variant)
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration
	stats.Eliminations += len(result.Eliminated)
	stats.LongestRounds = max(stats.LongestRounds, result.Rounds)

	if result.Winner == "" {
		stats.Draws++
	} else {
		stats.Decisive++
		stats.WinsByPlayer[result.Winner]++
	}

	s.log.Info().
		Str("variant", result.Variant.String()).
		Str("winner", result.Winner).
		Int("rounds", result.Rounds).
		Msg("result recorded")

	return s.SaveStats(result.Variant, stats)
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the value under key into v. It reports false when the key
// does not exist and leaves v untouched.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})

	return found, err
}

// badgerLogger routes badger's log output through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Msgf(strings.TrimSpace(format), args...)
}
